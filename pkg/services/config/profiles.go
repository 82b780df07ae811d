package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/de-tools/tagwarden/pkg/models/domain"
	"gopkg.in/ini.v1"
)

type ProfileRegistry interface {
	GetProfiles() ([]domain.ConfigProfile, error)
	GetRegion(profile string) (string, error)
}

type awsProfileRegistry struct {
	cfg *ini.File
}

// DefaultAWSConfigPath honours AWS_CONFIG_FILE and falls back to ~/.aws/config
func DefaultAWSConfigPath() (string, error) {
	if path := os.Getenv("AWS_CONFIG_FILE"); path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".aws", "config"), nil
}

func NewProfileRegistry(path string) (ProfileRegistry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config %s: %w", path, err)
	}
	return &awsProfileRegistry{cfg: cfg}, nil
}

func (r *awsProfileRegistry) GetProfiles() ([]domain.ConfigProfile, error) {
	var profiles []domain.ConfigProfile
	for _, section := range r.cfg.Sections() {
		if len(section.Keys()) == 0 {
			continue
		}
		if p, ok := parseSectionName(section.Name()); ok {
			profiles = append(profiles, p)
		}
	}
	return profiles, nil
}

func (r *awsProfileRegistry) GetRegion(profile string) (string, error) {
	name := "profile " + profile
	if profile == "default" {
		name = "default"
	}
	section, err := r.cfg.GetSection(name)
	if err != nil {
		return "", fmt.Errorf("profile %s not found", profile)
	}
	return section.Key("region").String(), nil
}

func parseSectionName(name string) (domain.ConfigProfile, bool) {
	switch {
	case name == "default":
		return domain.ConfigProfile{Name: name, Type: domain.ProfileTypeDefault}, true
	case strings.HasPrefix(name, "profile "):
		return domain.ConfigProfile{
			Name: strings.TrimSpace(strings.TrimPrefix(name, "profile ")),
			Type: domain.ProfileTypeNamed,
		}, true
	case strings.HasPrefix(name, "sso-session "):
		return domain.ConfigProfile{
			Name: strings.TrimSpace(strings.TrimPrefix(name, "sso-session ")),
			Type: domain.ProfileTypeSSO,
		}, true
	}
	return domain.ConfigProfile{}, false
}
