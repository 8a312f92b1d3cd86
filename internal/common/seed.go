package common

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

type SeedMerchant struct {
	Name     string `yaml:"name"`
	Country  string `yaml:"country"`
	Currency string `yaml:"currency"`
	Balance  string `yaml:"balance"`
}

type SeedCustomer struct {
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Country   string `yaml:"country"`
	Currency  string `yaml:"currency"`
	Balance   string `yaml:"balance"`
}

type SeedCard struct {
	CardNumber string `yaml:"card_number"`
	ExpDate    string `yaml:"exp_date"`
	Cvv        string `yaml:"cvv"`
}

type SeedConfig struct {
	Merchants []SeedMerchant `yaml:"merchants"`
	Customers []SeedCustomer `yaml:"customers"`
	Cards     []SeedCard     `yaml:"cards"`
}

// LoadSeedConfig reads the seed fixture file used by the setup command.
func LoadSeedConfig(seedFile string) (*SeedConfig, error) {
	var seedPath string
	if filepath.IsAbs(seedFile) {
		seedPath = seedFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		seedPath = filepath.Join(wd, seedFile)
	}

	data, err := os.ReadFile(seedPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", seedFile, err)
	}

	var config SeedConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", seedFile, err)
	}

	for i, merchant := range config.Merchants {
		if merchant.Name == "" {
			return nil, fmt.Errorf("merchant at index %d missing name", i)
		}
		if merchant.Currency == "" {
			return nil, fmt.Errorf("merchant at index %d missing currency", i)
		}
	}
	for i, customer := range config.Customers {
		if customer.FirstName == "" || customer.LastName == "" {
			return nil, fmt.Errorf("customer at index %d missing name", i)
		}
	}
	for i, card := range config.Cards {
		if card.CardNumber == "" {
			return nil, fmt.Errorf("card at index %d missing card_number", i)
		}
	}

	return &config, nil
}
