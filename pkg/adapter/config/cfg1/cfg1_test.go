// Copyright (c) 2024 alicer3
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cfg1_test

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"

	"github.com/alicer3/car-cordapp/pkg/adapter/config/cfg1"
	"github.com/alicer3/car-cordapp/pkg/adapter/config/settings"
	"github.com/alicer3/car-cordapp/pkg/adapter/config/vers"
	"github.com/alicer3/car-cordapp/pkg/core/model"
	"github.com/alicer3/car-cordapp/pkg/core/repo"
)

func ExampleConfig_MarshalYAML() {
	d, l, r, f, e := settings.Duration(30*time.Second), true, true, false, true
	lta := "LTA"
	c := &cfg1.Config{
		Database: cfg1.Database{
			Host:    "127.0.0.1",
			Port:    5432,
			Name:    "ccweb",
			PassDir: "/var/lib/ccweb/db",
		},
		Gin: cfg1.Gin{
			Logger:   &l,
			Recovery: &r,
		},
		Usecases: cfg1.Usecases{
			Ledger: cfg1.Ledger{
				TaxAuthority:  &lta,
				CounterOffers: &f,
				Faucet:        &f,
			},
			Publish: cfg1.Publish{
				RevocationTimeout: &d,
			},
		},
		Metrics: cfg1.Metrics{Enabled: &e, Path: "/metrics"},
		Vers: vers.Config{
			Versions: vers.Versions{
				Database: model.SemVer{1, 0, 0},
				Config:   model.SemVer{1, 0, 0},
			},
		},
	}
	b, err := yaml.Marshal(c)
	fmt.Println(err)
	fmt.Println(string(b))
	// Output:
	// <nil>
	// database:
	//     host: 127.0.0.1
	//     port: 5432
	//     name: ccweb
	//     pass-dir: /var/lib/ccweb/db
	// gin:
	//     logger: true
	//     recovery: true
	// usecases:
	//     ledger:
	//         tax-authority: LTA
	//         counter-offers: false
	//         faucet: false
	//     publish:
	//         revocation-timeout: 30s
	// metrics:
	//     enabled: true
	//     path: /metrics
	// versions:
	//     database: 1.0.0
	//     config: 1.0.0
}

const sample = `
database:
  host: 127.0.0.1
  port: 5432
  name: ccweb
  pass-dir: %s
usecases:
  ledger:
    tax-price: 1200 GBP
    reject-signers: both
  publish:
    default-mode: NEWISSUE
    revocation-timeout: 10s
    revocation-timeout-minimum: 1s
    revocation-timeout-maximum: 1m
peers:
  "O=Insurer,L=York,C=GB": http://insurer:8080/
versions:
  database: 1.0.0
  config: 1.0.0
`

type ConfigTestSuite struct {
	suite.Suite
	dir string
}

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (cts *ConfigTestSuite) SetupTest() {
	cts.dir = cts.T().TempDir()
}

func (cts *ConfigTestSuite) load(data string) (*cfg1.Config, error) {
	return cfg1.Load([]byte(data))
}

func (cts *ConfigTestSuite) TestLoadNormalizes() {
	c, err := cts.load(fmt.Sprintf(sample, cts.dir))
	cts.Require().NoError(err)
	cts.False(*c.Gin.Logger)
	cts.False(*c.Gin.Recovery)
	cts.False(*c.Metrics.Enabled)
	cts.Equal(cfg1.DefaultMetricsPath, c.Metrics.Path)
	cts.Equal("scram-sha-256", c.Database.AuthMethod)
	cts.Equal(model.PublishModeNewIssue, c.Usecases.Publish.Mode())
	cts.Equal(model.SemVer{1, 0, 0}, c.SchemaVersion())
	insurer := model.Party{Organisation: "Insurer", Locality: "York", Country: "GB"}
	cts.Equal(
		map[model.Party]string{insurer: "http://insurer:8080/"},
		c.PeerURLs(),
	)
}

func (cts *ConfigTestSuite) TestVerifierFromSettings() {
	c, err := cts.load(fmt.Sprintf(sample, cts.dir))
	cts.Require().NoError(err)
	v, err := c.Usecases.Ledger.NewVerifier()
	cts.Require().NoError(err)
	cts.Equal(model.DefaultTaxAuthority, v.TaxAuthority())
	cts.Equal(model.GBP(1200), v.TaxPrice())
}

func (cts *ConfigTestSuite) TestInvalidSettings() {
	cases := map[string][2]string{
		"major version": {"config: 1.0.0", "config: 2.0.0"},
		"reject policy": {"reject-signers: both", "reject-signers: all"},
		"tax price":     {"tax-price: 1200 GBP", "tax-price: -5 GBP"},
		"publish mode":  {"default-mode: NEWISSUE", "default-mode: COPY"},
		"timeout range": {"revocation-timeout: 10s", "revocation-timeout: 2m"},
		"peer name":     {`"O=Insurer,L=York,C=GB"`, `"Insurer"`},
		"peer url":      {"http://insurer:8080/", "ftp://insurer/"},
		"auth method":   {"pass-dir: %s", "pass-dir: %s\n  auth-method: md5"},
	}
	for name, repl := range cases {
		cts.Run(name, func() {
			cts.Require().Contains(sample, repl[0])
			data := strings.Replace(sample, repl[0], repl[1], 1)
			_, err := cts.load(fmt.Sprintf(data, cts.dir))
			cts.Error(err)
		})
	}
}

func (cts *ConfigTestSuite) TestRenewPasswords() {
	c, err := cts.load(fmt.Sprintf(sample, cts.dir))
	cts.Require().NoError(err)
	c.Database.RoleSuffix = "_t"
	var got []string
	fin, err := c.Database.RenewPasswords(
		context.Background(),
		func(_ context.Context, roles []repo.Role, pass []string) error {
			cts.Equal([]repo.Role{repo.AdminRole, repo.NormalRole}, roles)
			got = pass
			return nil
		},
		repo.AdminRole, repo.NormalRole,
	)
	cts.Require().NoError(err)
	cts.Require().Len(got, 2)
	cts.NotEqual(got[0], got[1])

	path := filepath.Join(cts.dir, ".pgpass")
	_, err = c.Database.ConnectionURL(repo.NormalRole, path)
	cts.Error(err, "main pass-file must not exist before finalization")
	cts.Require().NoError(fin())
	_, err = os.Stat(filepath.Join(cts.dir, ".pgpass.new"))
	cts.True(os.IsNotExist(err))

	s, err := c.Database.ConnectionURL(repo.NormalRole, path)
	cts.Require().NoError(err)
	u, err := url.Parse(s)
	cts.Require().NoError(err)
	cts.Equal("postgresql", u.Scheme)
	cts.Equal("127.0.0.1:5432", u.Host)
	cts.Equal("/ccweb", u.Path)
	cts.Equal(string(repo.NormalRole+"_t"), u.User.Username())
	pass, _ := u.User.Password()
	cts.Equal(got[1], pass)
}

func (cts *ConfigTestSuite) TestRenewPasswordsCallbackFailure() {
	c, err := cts.load(fmt.Sprintf(sample, cts.dir))
	cts.Require().NoError(err)
	_, err = c.Database.RenewPasswords(
		context.Background(),
		func(context.Context, []repo.Role, []string) error {
			return os.ErrPermission
		},
		repo.NormalRole,
	)
	cts.ErrorIs(err, os.ErrPermission)
	_, err = os.Stat(filepath.Join(cts.dir, ".pgpass.new"))
	cts.NoError(err, "renewed passwords are kept for a later retry")
}
