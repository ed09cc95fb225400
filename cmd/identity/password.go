// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bufio"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/identity/internal/password"
	"github.com/holomush/identity/internal/settings"
)

// NewPasswordCmd creates the password command and its subcommands.
func NewPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Hash, verify and generate passwords",
	}
	cmd.AddCommand(newPasswordHashCmd())
	cmd.AddCommand(newPasswordVerifyCmd())
	cmd.AddCommand(newPasswordGenerateCmd())
	return cmd
}

func passwordManager(cmd *cobra.Command) (*password.Manager, error) {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return password.NewManager(settings.NewStaticResolver(cfg), password.DefaultStrategies()...)
}

// readSecret returns the first line of stdin, so secrets stay out of the
// process list and shell history.
func readSecret(cmd *cobra.Command) (string, error) {
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", oops.Code("INVALID_ARGUMENT").Wrapf(err, "reading password from stdin")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newPasswordHashCmd() *cobra.Command {
	var tenant string
	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Hash the password read from stdin with the tenant's policy and strategy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := passwordManager(cmd)
			if err != nil {
				return err
			}
			raw, err := readSecret(cmd)
			if err != nil {
				return err
			}
			p, err := m.Create(tenant, raw)
			if err != nil {
				return err
			}
			cmd.Println(p.Encode())
			return nil
		},
	}
	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant whose password settings apply")
	return cmd
}

func newPasswordVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify ENCODED",
		Short: "Check the password read from stdin against an encoded hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := passwordManager(cmd)
			if err != nil {
				return err
			}
			p, err := m.Decode(args[0])
			if err != nil {
				return err
			}
			raw, err := readSecret(cmd)
			if err != nil {
				return err
			}
			if !p.IsMatch(raw) {
				return oops.Code("PASSWORD_MISMATCH").
					With("strategy", password.StrategyKey(args[0])).
					Errorf("password does not match")
			}
			cmd.Println("ok")
			return nil
		},
	}
}

func newPasswordGenerateCmd() *cobra.Command {
	var (
		tenant     string
		length     int
		characters string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random password and print it with its hash",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := passwordManager(cmd)
			if err != nil {
				return err
			}
			var (
				p     password.Password
				plain string
			)
			if characters != "" {
				p, plain, err = m.GenerateOTP(tenant, characters, length)
			} else {
				p, plain, err = m.Generate(tenant, length)
			}
			if err != nil {
				return err
			}
			cmd.Println(plain)
			cmd.Println(p.Encode())
			return nil
		},
	}
	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant whose hashing strategy applies")
	cmd.Flags().IntVar(&length, "length", 32, "number of characters")
	cmd.Flags().StringVar(&characters, "characters", "", "alphabet to draw from (default: letters, digits, - and _)")
	return cmd
}
