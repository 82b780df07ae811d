package domain

import "fmt"

type RunMode string

const (
	RunModeDryRun RunMode = "dry_run"
	RunModeLive   RunMode = "live"
)

func ModeFor(dryRun bool) RunMode {
	if dryRun {
		return RunModeDryRun
	}
	return RunModeLive
}

func (m RunMode) Simulated() bool {
	return m != RunModeLive
}

type ProfileType string

const (
	ProfileTypeDefault ProfileType = "default"
	ProfileTypeNamed   ProfileType = "profile"
	ProfileTypeSSO     ProfileType = "sso-session"
)

type ConfigProfile struct {
	Name string
	Type ProfileType
}

func (c ConfigProfile) String() string {
	return fmt.Sprintf("%s:%s", c.Type, c.Name)
}
