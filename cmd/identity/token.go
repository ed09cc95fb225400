// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/identity/internal/settings"
	"github.com/holomush/identity/internal/token"
)

// NewTokenCmd creates the token command and its subcommands.
func NewTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Create and validate signed tokens",
		Long:  `Create and validate tokens signed with token.secret (IDENTITY_TOKEN_SECRET).`,
	}
	cmd.AddCommand(newTokenCreateCmd())
	cmd.AddCommand(newTokenValidateCmd())
	return cmd
}

func requireSecret(cfg settings.Config) error {
	if cfg.Token.Secret == "" {
		return oops.Code("CONFIG_INVALID").Errorf("token secret is required (IDENTITY_TOKEN_SECRET)")
	}
	return nil
}

// parseClaims turns key=value pairs into claims. Values that parse as JSON
// keep their type; anything else is a string.
func parseClaims(pairs []string) (jwt.MapClaims, error) {
	claims := make(jwt.MapClaims, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, oops.Code("INVALID_ARGUMENT").With("claim", pair).Errorf("claims must be key=value")
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		claims[key] = value
	}
	return claims, nil
}

func newTokenCreateCmd() *cobra.Command {
	var (
		subject string
		typ     string
		ttl     time.Duration
		claims  []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a signed token and print it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := requireSecret(cfg); err != nil {
				return err
			}
			parsed, err := parseClaims(claims)
			if err != nil {
				return err
			}
			if subject != "" {
				parsed["sub"] = subject
			}

			now := time.Now()
			opts := token.CreateOptions{Type: typ, Issuer: cfg.Token.Issuer, IssuedOn: now}
			if cfg.Token.Audience != "" {
				opts.Audience = []string{cfg.Token.Audience}
			}
			if ttl > 0 {
				opts.ExpiresOn = now.Add(ttl)
			}

			created, err := token.NewManager(nil, token.WithLogger(logger)).
				Create(cmd.Context(), parsed, cfg.Token.Secret, opts)
			if err != nil {
				return err
			}
			cmd.Println(created.Token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "sub claim")
	cmd.Flags().StringVar(&typ, "type", token.DefaultType, "typ header")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "lifetime of the token (0 = never expires)")
	cmd.Flags().StringArrayVar(&claims, "claim", nil, "additional claim as key=value (repeatable)")
	return cmd
}

func newTokenValidateCmd() *cobra.Command {
	var (
		consume bool
		types   []string
	)
	cmd := &cobra.Command{
		Use:   "validate TOKEN",
		Short: "Validate a token and print its claims as JSON",
		Long: `Validate TOKEN against token.secret and the configured issuer and
audience. With --consume the token id is blacklisted so the token validates once.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := requireSecret(cfg); err != nil {
				return err
			}

			var blacklist token.Blacklist
			if consume {
				b, closeBlacklist, err := openBlacklist(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				defer closeBlacklist()
				blacklist = b
			}

			opts := token.ValidateOptions{ValidTypes: types, Consume: consume}
			if cfg.Token.Issuer != "" {
				opts.ValidIssuers = []string{cfg.Token.Issuer}
			}
			if cfg.Token.Audience != "" {
				opts.ValidAudiences = []string{cfg.Token.Audience}
			}

			validated, err := token.NewManager(blacklist, token.WithLogger(logger)).
				Validate(cmd.Context(), args[0], cfg.Token.Secret, opts)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(validated.Claims, "", "  ")
			if err != nil {
				return oops.Wrap(err)
			}
			cmd.Println(string(out))
			return nil
		},
	}
	cmd.Flags().BoolVar(&consume, "consume", false, "blacklist the token id after validation")
	cmd.Flags().StringSliceVar(&types, "type", nil, "accepted typ headers (default: any)")
	return cmd
}
