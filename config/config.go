package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// a type with service configuration parameters
type serviceConfig struct {
	// Port on which the service listens.
	Port int `json:"port" yaml:"port"`
	// Maximum number of allowed incoming connections.
	MaxConnections int `json:"maxConnections" yaml:"maxConnections"`
	// Directory holding the PID store database file.
	DataDirectory string `json:"dataDirectory" yaml:"dataDirectory"`
}

// a type with the base URLs links are built from
type siteConfig struct {
	// Base URL for user-facing pages.
	SiteURL string `json:"siteUrl" yaml:"siteUrl"`
	// Base URL for the REST API.
	APIURL string `json:"apiUrl" yaml:"apiUrl"`
}

// a type with the DOI prefix policy
type doiConfig struct {
	// Prefixes issued internally; clients cannot supply DOIs under them.
	ManagedPrefixes []string `json:"managedPrefixes" yaml:"managedPrefixes"`
	// Prefixes rejected outright.
	BannedPrefixes []string `json:"bannedPrefixes" yaml:"bannedPrefixes"`
	// DOIs accepted regardless of their prefix.
	AllowedDOIs []string `json:"allowedDois" yaml:"allowedDois"`
}

// global config variables
var Service serviceConfig
var Site siteConfig
var DOI doiConfig

// This struct performs the unmarshalling from the YAML config file and then
// copies its fields to the globals above.
type configFile struct {
	Service serviceConfig `yaml:"service"`
	Site    siteConfig    `yaml:"site"`
	DOI     doiConfig     `yaml:"doi"`
}

// This helper locates and reads a configuration file, returning an error
// indicating success or failure. All environment variables of the form
// ${ENV_VAR} are expanded.
func readConfig(bytes []byte) error {
	// Before we do anything else, expand any provided environment variables.
	bytes = []byte(os.ExpandEnv(string(bytes)))

	var conf configFile
	conf.Service.Port = 8080
	conf.Service.MaxConnections = 100
	conf.Service.DataDirectory = "."
	err := yaml.Unmarshal(bytes, &conf)
	if err != nil {
		log.Printf("Couldn't parse configuration data: %s\n", err)
		return err
	}

	// copy the config data into place
	Service = conf.Service
	Site = conf.Site
	DOI = conf.DOI

	return err
}

// This helper validates the given service parameters, returning an
// error indicating success or failure.
func validateServiceParameters(params serviceConfig) error {
	if params.Port < 0 || params.Port > 65535 {
		return fmt.Errorf("Invalid port: %d (must be 0-65535)", params.Port)
	}
	if params.MaxConnections <= 0 {
		return fmt.Errorf("Invalid maxConnections: %d (must be positive)",
			params.MaxConnections)
	}
	return nil
}

// This helper validates the base URLs links are built from.
func validateSiteParameters(params siteConfig) error {
	for name, value := range map[string]string{
		"siteUrl": params.SiteURL,
		"apiUrl":  params.APIURL,
	} {
		if value == "" {
			return fmt.Errorf("No %s was provided!", name)
		}
		parsed, err := url.Parse(value)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("Invalid %s: %s", name, value)
		}
		if strings.HasSuffix(value, "/") {
			return fmt.Errorf("Invalid %s: %s (must not end with '/')", name, value)
		}
	}
	return nil
}

// This helper validates the DOI prefix lists.
func validateDOIParameters(params doiConfig) error {
	for _, prefixes := range [][]string{params.ManagedPrefixes, params.BannedPrefixes} {
		for _, prefix := range prefixes {
			if !strings.HasPrefix(prefix, "10.") {
				return fmt.Errorf("Invalid DOI prefix: %s", prefix)
			}
		}
	}
	return nil
}

// This helper validates the given configfile, returning an error that indicates
// success or failure.
func validateConfig() error {
	err := validateServiceParameters(Service)
	if err != nil {
		return err
	}
	err = validateSiteParameters(Site)
	if err != nil {
		return err
	}
	return validateDOIParameters(DOI)
}

// Initializes the deposit service configuration using the given YAML byte
// data.
func Init(yamlData []byte) error {

	// Read the configuration from our YAML file.
	err := readConfig(yamlData)
	if err != nil {
		return err
	}

	// Validate the configuration.
	err = validateConfig()
	return err
}
