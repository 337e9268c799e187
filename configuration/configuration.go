// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Accessgrid Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/logger"

	"github.com/accessgrid/accessd/account"
)

// basic defaults (directories and files are relative to the "DataDirectory" from the configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultLevelDBDirectory = "data"
	defaultDatabase         = "access.leveldb"

	defaultLogDirectory = "log"
	defaultLogFile      = "accessd.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// to hold log levels
type LoglevelMap map[string]string

var defaultLogLevels = LoglevelMap{
	logger.DefaultTag: "critical",
}

// DatabaseType - where the ledger database lives
type DatabaseType struct {
	Directory string `gluamapper:"directory"`
	Name      string `gluamapper:"name"`
}

// Configuration - the full application configuration
//
// the three account fields are base58 text and are decoded during
// validation; a file naming an undecodable account never loads
type Configuration struct {
	DataDirectory string       `gluamapper:"data_directory"`
	PidFile       string       `gluamapper:"pidfile"`
	Database      DatabaseType `gluamapper:"database"`

	Owner             string `gluamapper:"owner"`
	Treasury          string `gluamapper:"treasury"`
	SettlementAccount string `gluamapper:"settlement_account"`
	BaseURI           string `gluamapper:"base_uri"`

	Logging logger.Configuration `gluamapper:"logging"`
}

// AccountSet - the decoded well-known accounts
type AccountSet struct {
	Owner      account.Account
	Treasury   account.Account
	Settlement account.Account
}

// DecodeAccounts - decode the configured base58 accounts
func (config *Configuration) DecodeAccounts() (*AccountSet, error) {
	owner, err := account.FromBase58(config.Owner)
	if nil != err {
		return nil, fmt.Errorf("owner: %q error: %s", config.Owner, err)
	}
	treasury, err := account.FromBase58(config.Treasury)
	if nil != err {
		return nil, fmt.Errorf("treasury: %q error: %s", config.Treasury, err)
	}
	settlement, err := account.FromBase58(config.SettlementAccount)
	if nil != err {
		return nil, fmt.Errorf("settlement_account: %q error: %s", config.SettlementAccount, err)
	}
	if owner.IsZero() || treasury.IsZero() || settlement.IsZero() {
		return nil, fmt.Errorf("accounts must not be zero")
	}
	return &AccountSet{
		Owner:      owner,
		Treasury:   treasury,
		Settlement: settlement,
	}, nil
}

// GetConfiguration - read, decode and verify the configuration
func GetConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default

		Database: DatabaseType{
			Directory: defaultLevelDBDirectory,
			Name:      defaultDatabase,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := ParseConfigurationFile(configurationFileName, options); err != nil {
		return nil, err
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = filepath.Clean(options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("path: %q is not a directory", options.DataDirectory)
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.Database.Directory,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = ensureAbsolute(options.DataDirectory, *f)
	}

	// optional absolute paths cannot be blank
	optionalAbsolute := []*string{
		&options.PidFile,
	}
	for _, f := range optionalAbsolute {
		if "" != *f {
			*f = ensureAbsolute(options.DataDirectory, *f)
		}
	}

	// the well-known accounts must decode
	if _, err := options.DecodeAccounts(); nil != err {
		return nil, err
	}

	return options, nil
}

// DatabasePath - the full path to the ledger database
func (config *Configuration) DatabasePath() string {
	return filepath.Join(config.Database.Directory, config.Database.Name)
}

// ensureAbsolute - ensure the path is absolute, relative to the directory
func ensureAbsolute(directory string, filePath string) string {
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(directory, filePath)
	}
	return filepath.Clean(filePath)
}
