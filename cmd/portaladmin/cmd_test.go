package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/haniSalm/FAST-E-Learning/internal/alumni"
	"github.com/haniSalm/FAST-E-Learning/internal/auth"
	"github.com/haniSalm/FAST-E-Learning/internal/config"
	"github.com/haniSalm/FAST-E-Learning/internal/logger"
	"github.com/haniSalm/FAST-E-Learning/internal/metrics"
	"github.com/haniSalm/FAST-E-Learning/internal/schema"
	"github.com/haniSalm/FAST-E-Learning/internal/user"
	"github.com/haniSalm/FAST-E-Learning/internal/validation"
	"github.com/haniSalm/FAST-E-Learning/testing/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliTest struct {
	name       string
	setup      func(t *testing.T)
	args       []string
	password   string
	wantErr    error
	wantErrStr string
	wantOut    string
}

func TestCommandLine(t *testing.T) {
	pgContainer := testdb.SetupSharedPostgres(t)
	defer pgContainer.Cleanup(t)

	pgContainer.RunMigrations(t, schema.Tables()...)
	testdb.CleanupTables(t, pgContainer.DB, schema.TableNames()...)

	m := metrics.NewMock()
	v := validation.New()
	users := user.NewRepository(pgContainer.DB, m)
	tokens := auth.NewTokenManager("test-secret", 5*time.Minute)
	authCfg := config.AuthConfig{AccessTokenTTL: 300, RefreshTokenTTL: 3600, BcryptCost: 4}

	var out bytes.Buffer
	cli := &commandLine{
		db:      pgContainer.DB,
		users:   users,
		authSvc: auth.NewService(auth.NewRepository(pgContainer.DB, m), users, tokens, v, authCfg, m),
		alumni:  alumni.NewService(alumni.NewRepository(pgContainer.DB, m), v),
		out:     &out,
		logger:  logger.NewDiscard(),
	}

	var password string
	readPasswordFunc = func(int) ([]byte, error) { return []byte(password), nil }

	tests := []cliTest{
		{name: "no command", args: []string{"portaladmin"}, wantErr: errHelp},
		{name: "unknown command", args: []string{"portaladmin", "flush"}, wantErr: errHelp},
		{name: "migrate is idempotent", args: []string{"portaladmin", "migrate"}},
		{name: "createsuperuser without email", args: []string{"portaladmin", "createsuperuser"}, wantErr: errHelp},
		{name: "createsuperuser without password", args: []string{"portaladmin", "createsuperuser", "-email", "admin@example.com"}, wantErr: errHelp},
		{
			name:     "createsuperuser",
			args:     []string{"portaladmin", "createsuperuser", "-email", "admin@example.com"},
			password: "s3cret-pass",
			wantOut:  "Superuser admin@example.com created",
		},
		{
			name:       "createsuperuser rejects invalid email",
			args:       []string{"portaladmin", "createsuperuser", "-email", "junk"},
			password:   "s3cret-pass",
			wantErrStr: "valid email",
		},
		{
			name:     "createsuperuser duplicate",
			args:     []string{"portaladmin", "createsuperuser", "-email", "admin@example.com"},
			password: "s3cret-pass",
			wantErr:  user.ErrEmailTaken,
		},
		{name: "addalumni without email", args: []string{"portaladmin", "addalumni"}, wantErr: errHelp},
		{
			name:       "addalumni rejects foreign domain",
			args:       []string{"portaladmin", "addalumni", "-email", "l123456@gmail.com"},
			wantErrStr: "lnnnnnn@lhr.nu.edu.pk",
		},
		{
			name:    "addalumni",
			args:    []string{"portaladmin", "addalumni", "-email", "l123456@lhr.nu.edu.pk"},
			wantOut: "Added l123456@lhr.nu.edu.pk to the alumni list",
		},
		{
			name:    "addalumni duplicate",
			args:    []string{"portaladmin", "addalumni", "-email", "l123456@lhr.nu.edu.pk"},
			wantErr: alumni.ErrAlreadyListed,
		},
		{
			name: "cleartokens keeps live tokens",
			setup: func(t *testing.T) {
				admin, err := users.GetByEmail(context.Background(), "admin@example.com")
				require.NoError(t, err)
				repo := auth.NewRepository(pgContainer.DB, m)
				require.NoError(t, repo.CreateRefreshToken(context.Background(), admin.ID, "expired-1", time.Now().Add(-time.Hour)))
				require.NoError(t, repo.CreateRefreshToken(context.Background(), admin.ID, "expired-2", time.Now().Add(-time.Minute)))
				require.NoError(t, repo.CreateRefreshToken(context.Background(), admin.ID, "live", time.Now().Add(time.Hour)))
			},
			args:    []string{"portaladmin", "cleartokens"},
			wantOut: "Deleted 2 expired refresh tokens",
		},
		{name: "deleteallusers without confirmation", args: []string{"portaladmin", "deleteallusers"}, wantErr: errHelp},
		{name: "deleteallusers", args: []string{"portaladmin", "deleteallusers", "-yes"}, wantOut: "Deleted 1 users"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			password = tt.password
			if tt.setup != nil {
				tt.setup(t)
			}

			err := cli.run(context.Background(), tt.args)

			switch {
			case tt.wantErr != nil:
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrStr)
			default:
				require.NoError(t, err)
			}
			if tt.wantOut != "" {
				assert.Contains(t, out.String(), tt.wantOut)
			}
		})
	}

	t.Run("superuser flags", func(t *testing.T) {
		password = "another-pass"
		require.NoError(t, cli.run(context.Background(), []string{"portaladmin", "createsuperuser", "-email", "root@example.com"}))

		u, err := users.GetByEmail(context.Background(), "root@example.com")
		require.NoError(t, err)
		assert.True(t, u.IsSuperuser)
		assert.True(t, u.IsStaff)
		assert.NotEqual(t, "another-pass", u.Password)
	})
}
