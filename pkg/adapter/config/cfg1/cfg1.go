// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package cfg1 makes it possible to load configuration settings with
// version 1.x.y since all minor and patch versions (which are known)
// with the same major version, can be loaded with one implementation.
// When trying to serialize and write out settings, the latest known
// minor and patch version will be used since older versions (with the
// same major version) can ignore the extra fields too.
package cfg1

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alicer3/car-cordapp/pkg/adapter/config/settings"
	"github.com/alicer3/car-cordapp/pkg/adapter/config/vers"
	"github.com/alicer3/car-cordapp/pkg/adapter/db/postgres"
	"github.com/alicer3/car-cordapp/pkg/adapter/db/postgres/schemarp"
	"github.com/alicer3/car-cordapp/pkg/adapter/hash/scram"
	"github.com/alicer3/car-cordapp/pkg/adapter/restful/gin"
	"github.com/alicer3/car-cordapp/pkg/core/contract"
	"github.com/alicer3/car-cordapp/pkg/core/log"
	"github.com/alicer3/car-cordapp/pkg/core/model"
	"github.com/alicer3/car-cordapp/pkg/core/repo"
	scrami "github.com/alicer3/car-cordapp/pkg/core/scram"
	"github.com/alicer3/car-cordapp/pkg/core/usecase/ledgeruc"
	"github.com/alicer3/car-cordapp/pkg/core/usecase/publishuc"
	"github.com/alicer3/car-cordapp/pkg/core/usecase/schemauc"
)

// These constants define the major, minor, and patch version of the
// configuration settings which are supported by the Config struct.
const (
	Major = 1
	Minor = 0
	Patch = 0
)

// Version is the semantic version of Config struct.
var Version = model.SemVer{Major, Minor, Patch}

// DefaultMetricsPath is used when metrics are enabled without a path.
const DefaultMetricsPath = "/metrics"

// Config contains all settings which are required by different parts
// of the project following the v1.x.y format, such as adapters or
// use cases. It is preferred to implement Config with primitive fields
// or other structs which are defined locally, not models or structs
// which are defined in lower layers, so the configuration can be
// versioned and kept intact while other layers can change freely.
type Config struct {
	Database Database `yaml:"database"` // PostgreSQL connection settings
	Gin      Gin      `yaml:"gin"`      // Gin-Gonic instantiation settings
	Usecases Usecases `yaml:"usecases"` // Settings of the use cases
	Metrics  Metrics  `yaml:"metrics"`  // Prometheus exposition settings

	// Peers maps the X.500 name of other nodes, formatted as
	// O=..,L=..,C=.., to their base URLs, so they may be asked to
	// revoke their published copies. Parties which are missing here
	// are served by this node itself.
	Peers map[string]string `yaml:"peers,omitempty"`

	// Vers contains the configuration file and database schema version
	// strings corresponding to this Config instance and its Database
	// target.
	Vers vers.Config `yaml:",inline"`

	peers map[model.Party]string
}

// Database contains the database related configuration settings.
type Database struct {
	Host    string `yaml:"host"`     // domain name or IP address of DBMS
	Port    int    `yaml:"port"`     // port number of the DBMS server
	Name    string `yaml:"name"`     // database name, like ccweb
	PassDir string `yaml:"pass-dir"` // path of the passwords dir

	// RoleSuffix specifies a possibly empty suffix for the database
	// role names. Normally, repo.AdminRole and repo.NormalRole roles
	// are used. In the parallel test cases, it is required to create
	// multiple non-colliding roles in the same database cluster and
	// so having a unique (per test) role suffix helps with parallelism.
	RoleSuffix repo.Role `yaml:"role-suffix,omitempty"`

	// AuthMethod specifies the database authentication method name.
	// Only scram-sha-256 is supported, which is also the default.
	AuthMethod string `yaml:"auth-method,omitempty"`

	hasher scrami.Hasher
}

// ConnectionPool creates a database connection pool using the
// connection information which are kept in the `c` settings.
func (c *Config) ConnectionPool(
	ctx context.Context, r repo.Role,
) (*postgres.Pool, error) {
	p, err := c.Database.ConnectionPool(ctx, r)
	if err != nil {
		return nil, fmt.Errorf(
			"%s@%s:%d/%s: %w",
			r, c.Database.Host, c.Database.Port, c.Database.Name, err,
		)
	}
	return p, nil
}

// SchemaVersion returns the semantic version of the database schema
// which its connection information are kept by this Config struct.
func (c *Config) SchemaVersion() model.SemVer {
	return c.Vers.Versions.Database
}

// PeerURLs returns the validated Peers map, keyed by parties.
func (c *Config) PeerURLs() map[model.Party]string {
	return c.peers
}

// Settler adapts a Config to the schemauc.Settings interface, so the
// `db init` command may pass it to the schemauc.InitDBUseCase.
type Settler struct {
	*Config
}

var _ schemauc.Settings = Settler{}

// ConnectionPool creates a connections pool for the `r` role.
func (s Settler) ConnectionPool(
	ctx context.Context, r repo.Role,
) (schemauc.Pool, error) {
	p, err := s.Config.ConnectionPool(ctx, r)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// NewSchemaRepo instantiates a schemarp repository for the database.
func (s Settler) NewSchemaRepo() repo.Schema {
	return s.Database.NewSchemaRepo()
}

// RenewPasswords renews passwords of the `roles` in the pass-dir of
// the database and in the database itself using the `change` function.
func (s Settler) RenewPasswords(
	ctx context.Context,
	change func(
		ctx context.Context, roles []repo.Role, passwords []string,
	) error,
	roles ...repo.Role,
) (func() error, error) {
	return s.Database.RenewPasswords(ctx, change, roles...)
}

// ConnectionPool creates a database connection pool using the
// connection information which are kept in the `d` settings.
// Initially, the .pgpass file in the d.PassDir folder is checked
// which should conform with the pgpass format with lines like this:
//
//	host:port:dbname:role:password
//
// If a database connection could be established, created pool and nil
// error will be returned. Otherwise, passwords might have been updated
// during a previous incomplete `db init` operation. So the .pgpass.new
// file in the same d.PassDir folder is checked too. If a connection
// could be established successfully, the .pgpass.new will be moved to
// the .pgpass file, so the .pgpass.new file may be overwritten safely
// by the subsequent password renewals.
//
// The `d.RoleSuffix` will be appended to the given `r` role name too.
func (d Database) ConnectionPool(
	ctx context.Context, r repo.Role,
) (*postgres.Pool, error) {
	path := filepath.Join(d.PassDir, ".pgpass")
	u, err := d.ConnectionURL(r, path)
	if err != nil {
		return nil, fmt.Errorf("using %q pass-file: %w", path, err)
	}
	p, err := postgres.NewPool(ctx, u)
	if err == nil {
		return p, nil
	}
	newPath := filepath.Join(d.PassDir, ".pgpass.new")
	log.Warn(
		ctx, "trying the renewed pass-file",
		slog.String("failed", path), slog.String("next", newPath),
		log.Err("err", err),
	)
	u, err = d.ConnectionURL(r, newPath)
	if err != nil {
		return nil, fmt.Errorf("using %q pass-file: %w", newPath, err)
	}
	p, err = postgres.NewPool(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("can use neither pass-file: %w", err)
	}
	if err = os.Rename(newPath, path); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("os.Rename: %w", err)
	}
	return p, nil
}

// ConnectionURL returns the database connection URL embedding the host,
// port, role name, database name, and password value. These items are
// directly taken from the `d` settings, but the role name which is
// specified by the `r` argument and the password value which is read
// from the given `path` file. Returned URL has the postgresql scheme.
// The `path` file may contain empty or `#`-commented lines in addition
// to the password specifying lines which should conform with the pgpass
// files format.
func (d Database) ConnectionURL(
	r repo.Role, path string,
) (string, error) {
	passLines, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading pass-file: %w", err)
	}
	r = r + d.RoleSuffix
	prfx := fmt.Sprintf("%s:%d:%s:%s:", d.Host, d.Port, d.Name, r)
	var pass string
	for _, line := range strings.Split(string(passLines), "\n") {
		if line == "" || line[0] == '#' {
			continue
		}
		if strings.HasPrefix(line, prfx) {
			pass = line[len(prfx):]
			break
		}
	}
	if pass == "" {
		return "", fmt.Errorf("no matching password line")
	}
	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(string(r), pass),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	return u.String(), nil
}

// NewSchemaRepo instantiates a fresh Schema repository which suffixes
// role names by `d.RoleSuffix` and hashes their passwords as expected
// by the `d.AuthMethod`. The ValidateAndNormalize method must be called
// beforehand, so the hasher is known.
func (d Database) NewSchemaRepo() *schemarp.Repo {
	return schemarp.New(d.RoleSuffix, d.hasher)
}

// RenewPasswords generates new secure passwords for the given roles
// and after recording them in a temporary file (i.e., .pgpass.new file
// in the `d.PassDir` directory), will use the `change` function in
// order to update the passwords of those `roles` in the database too.
// The `change` function should perform the update operation in a
// transaction which may or may not be committed when RenewPasswords
// returns. After a successful commitment, the returned finalizer must
// be called in order to move the temporary passwords file over the
// main .pgpass file.
//
// The `d.RoleSuffix` will be appended to the role names in the file.
// The `change` function must add the same suffix to `roles` names.
func (d Database) RenewPasswords(
	ctx context.Context,
	change func(
		ctx context.Context, roles []repo.Role, passwords []string,
	) error,
	roles ...repo.Role,
) (finalizer func() error, err error) {
	passwords := make([]string, len(roles))
	b := make([]byte, 16) // 128 bits
	enc := base64.RawStdEncoding
	p := make([]byte, enc.EncodedLen(len(b)))
	prfx := fmt.Sprintf("%s:%d:%s", d.Host, d.Port, d.Name)
	lines := make([]string, len(roles))
	for i, r := range roles {
		if _, err = rand.Read(b); err != nil {
			return nil, fmt.Errorf("rand.Read for i=%d: %w", i, err)
		}
		enc.Encode(p, b)
		passwords[i] = string(p)
		lines[i] = fmt.Sprintf(
			"%s:%s:%s\n", prfx, r+d.RoleSuffix, passwords[i],
		)
	}
	if err = os.MkdirAll(d.PassDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating %q dir: %w", d.PassDir, err)
	}
	orgPath := filepath.Join(d.PassDir, ".pgpass")
	newPath := filepath.Join(d.PassDir, ".pgpass.new")
	err = os.WriteFile(newPath, []byte(strings.Join(lines, "")), 0o600)
	if err != nil {
		return nil, fmt.Errorf("writing %q file: %w", newPath, err)
	}
	if err = change(ctx, roles, passwords); err != nil {
		return nil, fmt.Errorf("passwords change callback: %w", err)
	}
	return func() error {
		return os.Rename(newPath, orgPath)
	}, nil
}

// ValidateAndNormalize validates the database settings and fills the
// default authentication method. It also prepares the passwords hasher.
func (d *Database) ValidateAndNormalize() error {
	switch am := d.AuthMethod; am {
	case "":
		d.AuthMethod = "scram-sha-256"
		fallthrough
	case "scram-sha-256":
		d.hasher = scram.SHA256()
	default:
		return fmt.Errorf(
			"unsupported database authentication method: %q", am,
		)
	}
	if d.Port <= 0 || d.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", d.Port)
	}
	return nil
}

// Gin contains the gin-gonic related configuration settings.
// Nil fields are normalized to false.
type Gin struct {
	Logger   *bool `yaml:"logger"`   // whether to use gin.Logger()
	Recovery *bool `yaml:"recovery"` // whether to use gin.Recovery()
}

// NewEngine instantiates a new gin-gonic engine instance based on
// the `g` settings.
func (g Gin) NewEngine() *gin.Engine {
	middlewares := make([]gin.HandlerFunc, 0, 2)
	if *g.Logger {
		middlewares = append(middlewares, gin.Logger())
	}
	if *g.Recovery {
		middlewares = append(middlewares, gin.Recovery())
	}
	return gin.New(middlewares...)
}

// Metrics contains the prometheus exposition settings.
type Metrics struct {
	Enabled *bool  `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

// Usecases contains the configuration settings for all use cases.
type Usecases struct {
	Ledger  Ledger  `yaml:"ledger"`
	Publish Publish `yaml:"publish"`
}

// Ledger contains the configuration settings of the ledger use case
// and its contract verifier. Nil fields take the use case defaults.
type Ledger struct {
	// TaxAuthority is the organisation name of the party which may
	// issue road tax records, LTA by default.
	TaxAuthority *string `yaml:"tax-authority,omitempty"`
	// TaxPrice is the price of road tax records, like "1000 GBP".
	TaxPrice *string `yaml:"tax-price,omitempty"`
	// RejectSigners is one of responder, both, or any.
	RejectSigners *string `yaml:"reject-signers,omitempty"`
	// CounterOffers enables the price direction checks of updates.
	CounterOffers *bool `yaml:"counter-offers"`
	// Faucet exposes the tokens deposit API, for development only.
	Faucet *bool `yaml:"faucet"`

	taxPrice      model.Amount
	rejectSigners contract.RejectSignerPolicy
}

func (l *Ledger) validateAndNormalize() error {
	settings.Nil2Zero(&l.CounterOffers)
	settings.Nil2Zero(&l.Faucet)
	if l.TaxAuthority != nil && *l.TaxAuthority == "" {
		return fmt.Errorf("empty tax authority")
	}
	if l.TaxPrice != nil {
		a, err := model.ParseAmount(*l.TaxPrice)
		if err != nil {
			return fmt.Errorf("parsing tax price: %w", err)
		}
		if !a.IsPositive() {
			return fmt.Errorf("tax price (%v) is not positive", a)
		}
		l.taxPrice = a
	}
	if l.RejectSigners != nil {
		p, err := contract.ParseRejectSignerPolicy(*l.RejectSigners)
		if err != nil {
			return fmt.Errorf("parsing reject signers: %w", err)
		}
		l.rejectSigners = p
	}
	return nil
}

// NewVerifier instantiates the contract verifier based on the settings
// in the `l` struct.
func (l Ledger) NewVerifier() (*contract.Verifier, error) {
	opts := make([]contract.Option, 0, 3)
	if l.rejectSigners != contract.RejectSignerPolicyInvalid {
		opts = append(opts, contract.WithRejectSignerPolicy(l.rejectSigners))
	}
	if l.TaxAuthority != nil {
		opts = append(opts, contract.WithTaxAuthority(*l.TaxAuthority))
	}
	if l.TaxPrice != nil {
		opts = append(opts, contract.WithTaxPrice(l.taxPrice))
	}
	return contract.New(opts...)
}

// NewUseCase instantiates a new ledger use case based on the settings
// in the `l` struct. The `r` revoker may be nil.
func (l Ledger) NewUseCase(
	p repo.Pool, v repo.Vault, pub repo.Published,
	c ledgeruc.Checker, r ledgeruc.Revoker,
) (*ledgeruc.UseCase, error) {
	opts := make([]ledgeruc.Option, 0, 4)
	if r != nil {
		opts = append(opts, ledgeruc.WithRevoker(r))
	}
	if *l.CounterOffers {
		opts = append(opts, ledgeruc.WithCounterOfferPolicy(true))
	}
	if l.TaxAuthority != nil {
		opts = append(opts, ledgeruc.WithTaxAuthority(*l.TaxAuthority))
	}
	if l.TaxPrice != nil {
		opts = append(opts, ledgeruc.WithTaxPrice(l.taxPrice))
	}
	return ledgeruc.New(p, v, pub, c, opts...)
}

// Publish contains the configuration settings of the publish use case.
type Publish struct {
	// DefaultMode is the publish mode of requests which name no mode,
	// either NEWISSUE or REUSE (the default).
	DefaultMode *string `yaml:"default-mode,omitempty"`
	// RevocationTimeout limits the scattered revocation requests.
	// A nil value lets the use case choose its default.
	RevocationTimeout *settings.Duration `yaml:"revocation-timeout"`
	// MinRevocationTimeout is the inclusive minimum acceptable value
	// for the RevocationTimeout setting.
	MinRevocationTimeout *settings.Duration `yaml:"revocation-timeout-minimum"`
	// MaxRevocationTimeout is the inclusive maximum acceptable value
	// for the RevocationTimeout setting.
	MaxRevocationTimeout *settings.Duration `yaml:"revocation-timeout-maximum"`

	mode model.PublishMode
}

func (p *Publish) validateAndNormalize() error {
	p.mode = model.PublishModeReuse
	if p.DefaultMode != nil {
		m, err := model.ParsePublishMode(*p.DefaultMode)
		if err != nil {
			return fmt.Errorf("parsing default publish mode: %w", err)
		}
		p.mode = m
	}
	if err := settings.VerifyRange(
		&p.RevocationTimeout,
		p.MinRevocationTimeout,
		p.MaxRevocationTimeout,
	); err != nil {
		return fmt.Errorf("revocation timeout: %w", err)
	}
	if p.RevocationTimeout != nil && *p.RevocationTimeout <= 0 {
		return fmt.Errorf("revocation timeout is not positive")
	}
	return nil
}

// Mode returns the parsed DefaultMode.
func (p Publish) Mode() model.PublishMode {
	return p.mode
}

// NewUseCase instantiates a new publish use case based on the settings
// in the `p` struct. The `peers` and `m` may be nil.
func (p Publish) NewUseCase(
	pool repo.Pool, v repo.Vault, pub repo.Published,
	c publishuc.Checker, peers publishuc.Peers, m publishuc.Metrics,
) (*publishuc.UseCase, error) {
	opts := make([]publishuc.Option, 0, 3)
	if peers != nil {
		opts = append(opts, publishuc.WithPeers(peers))
	}
	if m != nil {
		opts = append(opts, publishuc.WithMetrics(m))
	}
	if p.RevocationTimeout != nil {
		d := time.Duration(*p.RevocationTimeout)
		opts = append(opts, publishuc.WithRevocationTimeout(d))
	}
	return publishuc.New(pool, v, pub, c, opts...)
}

// Load unmarshals the data byte slice and loads a Config instance
// assuming that it contains the Config settings. Extra items in the
// data will be ignored and missing items will take their default
// values. Thereafter, loaded Config will be validated and normalized
// in order to ensure that provided settings are acceptable (for example
// the major version which is reported by data settings must match
// with number 1 which is the major version of this config package).
func Load(data []byte) (*Config, error) {
	c := &Config{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("unmarshalling yaml: %w", err)
	}
	if err := c.ValidateAndNormalize(); err != nil {
		return nil, fmt.Errorf("validating configs: %w", err)
	}
	return c, nil
}

// ValidateAndNormalize validates the configuration settings and
// returns an error if they were not acceptable. It can also modify
// settings in order to normalize them or replace some zero values with
// their expected default values (if any).
func (c *Config) ValidateAndNormalize() error {
	if err := c.Vers.Validate(Version); err != nil {
		return fmt.Errorf(
			"expecting version v%d.%d: %w", Major, Minor, err,
		)
	}
	settings.Nil2Zero(&c.Gin.Logger)
	settings.Nil2Zero(&c.Gin.Recovery)
	settings.Nil2Zero(&c.Metrics.Enabled)
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics path %q is not absolute", c.Metrics.Path)
	}
	if err := c.Database.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating database settings: %w", err)
	}
	if err := c.Usecases.Ledger.validateAndNormalize(); err != nil {
		return fmt.Errorf("validating ledger settings: %w", err)
	}
	if err := c.Usecases.Publish.validateAndNormalize(); err != nil {
		return fmt.Errorf("validating publish settings: %w", err)
	}
	c.peers = make(map[model.Party]string, len(c.Peers))
	for name, base := range c.Peers {
		p, err := model.ParseParty(name)
		if err != nil {
			return fmt.Errorf("parsing peer %q: %w", name, err)
		}
		u, err := url.Parse(base)
		if err != nil {
			return fmt.Errorf("parsing %q URL: %w", name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("peer %q URL is not http(s): %q", name, base)
		}
		c.peers[p] = base
	}
	return nil
}

// Marshalled struct contains a field for each one of the Config struct
// fields. The types of those fields are the same if their default
// serialization format is acceptable, otherwise, they will be
// serialized manually using the Marshal method and their target
// primitive types will be used in the Marshalled struct.
type Marshalled struct {
	Database Database `yaml:"database"`
	Gin      Gin      `yaml:"gin"`
	Usecases struct {
		Ledger  Ledger `yaml:"ledger"`
		Publish struct {
			DefaultMode *string `yaml:"default-mode,omitempty"`
			Timeout     *string `yaml:"revocation-timeout,omitempty"`
			MinTimeout  *string `yaml:"revocation-timeout-minimum,omitempty"`
			MaxTimeout  *string `yaml:"revocation-timeout-maximum,omitempty"`
		} `yaml:"publish"`
	} `yaml:"usecases"`
	Metrics Metrics           `yaml:"metrics"`
	Peers   map[string]string `yaml:"peers,omitempty"`
	Vers    *vers.Marshalled  `yaml:",inline"`
}

// MarshalYAML returns the Marshalled form of `c`, so durations and
// versions are written in their human-readable format.
func (c *Config) MarshalYAML() (interface{}, error) {
	return c.Marshal(), nil
}

// Marshal creates an instance of the Marshalled struct and fills it
// with the `c` Config instance contents. Fields which are defined in
// this package are encoded here and the Marshal method of fields which
// are defined in other packages is called recursively.
func (c *Config) Marshal() *Marshalled {
	m := &Marshalled{}
	m.Database = c.Database
	m.Gin = c.Gin
	m.Usecases.Ledger = c.Usecases.Ledger
	pub := c.Usecases.Publish
	m.Usecases.Publish.DefaultMode = pub.DefaultMode
	m.Usecases.Publish.Timeout = pub.RevocationTimeout.Marshal()
	m.Usecases.Publish.MinTimeout = pub.MinRevocationTimeout.Marshal()
	m.Usecases.Publish.MaxTimeout = pub.MaxRevocationTimeout.Marshal()
	m.Metrics = c.Metrics
	m.Peers = c.Peers
	m.Vers = c.Vers.Marshal()
	return m
}
