package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/persistence"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/service"
)

var (
	staffCmd = &cobra.Command{
		Use:   "staff",
		Short: "Manage staff accounts",
	}

	staffCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Create a staff account, typically the first admin",
		RunE:  runStaffCreate,
	}

	staffName     string
	staffEmail    string
	staffPassword string
	staffRole     string
)

func init() {
	flags := staffCreateCmd.Flags()
	flags.StringVar(&staffName, "name", "", "display name")
	flags.StringVar(&staffEmail, "email", "", "login email")
	flags.StringVar(&staffPassword, "password", "", "initial password (at least 8 characters)")
	flags.StringVar(&staffRole, "role", string(domain.StaffRoleAdmin), "AGENT, TEAM_LEAD or ADMIN")
	_ = staffCreateCmd.MarkFlagRequired("name")
	_ = staffCreateCmd.MarkFlagRequired("email")
	_ = staffCreateCmd.MarkFlagRequired("password")
	staffCmd.AddCommand(staffCreateCmd)
}

func runStaffCreate(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	pg, err := persistence.NewPostgres(cmd.Context(), cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	svc := service.NewStaffService(repository.NewStaffRepository(pg.PoolHandle()), cfg.Auth.BcryptCost)
	member, err := svc.BootstrapStaffMember(cmd.Context(), staffName, staffEmail, staffPassword,
		domain.StaffRole(strings.ToUpper(staffRole)))
	if err != nil {
		return err
	}
	logger.Info("staff member created", zap.String("id", member.ID), zap.String("role", string(member.Role)))
	fmt.Fprintln(cmd.OutOrStdout(), member.ID)
	return nil
}
