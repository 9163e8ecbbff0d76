package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	app "github.com/mutugading/goapps-backend/services/hr/internal/application/employee"
	"github.com/mutugading/goapps-backend/services/hr/internal/domain/employee"
	"github.com/mutugading/goapps-backend/services/hr/internal/infrastructure/config"
	"github.com/mutugading/goapps-backend/services/hr/internal/infrastructure/postgres"
	"github.com/mutugading/goapps-backend/services/hr/pkg/cedula"
	"github.com/mutugading/goapps-backend/services/hr/pkg/logger"
)

// errInvalidInput is returned by validate --strict when any input is not a complete cédula.
var errInvalidInput = errors.New("one or more inputs are not complete national ids")

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hrctl",
		Short: "Operator tooling for the HR service",
		Long: `hrctl validates Panamanian national ids offline and runs
maintenance tasks against the HR database.

Database commands read the same configuration as the server
(config.yaml, overridable with HR_* environment variables).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "path to config file")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	return rootCmd
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <national-id>...",
		Short: "Validate national ids and print the results as JSON",
		Long: `Validate classifies each argument as complete, valid so far, or invalid
and prints one JSON object per argument.

Example:
  hrctl validate 8-123-4567 PE-45 14-1-1
  hrctl validate --strict 8AV-123-4567`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strict, _ := cmd.Flags().GetBool("strict")
			pretty, _ := cmd.Flags().GetBool("pretty")
			return runValidate(cmd.OutOrStdout(), args, strict, pretty)
		},
	}

	cmd.Flags().Bool("strict", false, "exit non-zero unless every input is a complete national id")
	cmd.Flags().Bool("pretty", false, "indent JSON output")

	return cmd
}

func runValidate(out io.Writer, inputs []string, strict, pretty bool) error {
	enc := json.NewEncoder(out)
	if pretty {
		enc.SetIndent("", "  ")
	}

	failed := false
	for _, input := range inputs {
		result := cedula.Validate(input)
		if !result.IsComplete {
			failed = true
		}
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
	}

	if strict && failed {
		return errInvalidInput
	}
	return nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd, func(ctx context.Context, db *postgres.DB) error {
				applied, err := db.Migrate(ctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(applied) == 0 {
					fmt.Fprintln(out, "Database is up to date")
					return nil
				}
				for _, name := range applied {
					fmt.Fprintf(out, "Applied %s\n", name)
				}
				return nil
			})
		},
	}
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert sample employees",
		Long: `Seed inserts a fixed set of sample employees. Employees whose code
or national id already exists are skipped, so the command can be rerun.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			by, _ := cmd.Flags().GetString("as")
			return withDatabase(cmd, func(ctx context.Context, db *postgres.DB) error {
				handler := app.NewCreateHandler(postgres.NewEmployeeRepository(db), app.Deps{})
				return runSeed(ctx, cmd.OutOrStdout(), handler, by)
			})
		},
	}

	cmd.Flags().String("as", "hrctl", "user recorded as creator")

	return cmd
}

// creator is the part of the create handler used by seed.
type creator interface {
	Handle(ctx context.Context, cmd app.CreateCommand) (*employee.Employee, error)
}

func runSeed(ctx context.Context, out io.Writer, handler creator, by string) error {
	created, skipped := 0, 0
	for _, c := range sampleEmployees() {
		c.CreatedBy = by
		entity, err := handler.Handle(ctx, c)
		switch {
		case errors.Is(err, employee.ErrAlreadyExists), errors.Is(err, employee.ErrNationalIDTaken):
			skipped++
			fmt.Fprintf(out, "Skipped %s (exists)\n", c.EmployeeCode)
		case err != nil:
			return fmt.Errorf("failed to seed %s: %w", c.EmployeeCode, err)
		default:
			created++
			fmt.Fprintf(out, "Created %s %s\n", entity.Code(), entity.FullName())
		}
	}

	fmt.Fprintf(out, "Seed complete: %d created, %d skipped\n", created, skipped)
	return nil
}

func sampleEmployees() []app.CreateCommand {
	hired := func(s string) time.Time {
		t, _ := time.Parse(time.DateOnly, s)
		return t
	}

	return []app.CreateCommand{
		{EmployeeCode: "EMP-001", NationalID: "8-123-4567", FirstName: "Ana", LastName: "Castillo",
			Email: "ana.castillo@example.com", Position: "HR Manager", Department: "HUMAN_RESOURCES",
			HireDate: hired("2019-03-01"), SalaryCents: 420000},
		{EmployeeCode: "EMP-002", NationalID: "8AV-45-1200", FirstName: "Luis", LastName: "Pérez",
			Email: "luis.perez@example.com", Position: "Accountant", Department: "FINANCE",
			HireDate: hired("2020-07-15"), SalaryCents: 310000},
		{EmployeeCode: "EMP-003", NationalID: "PE-12-345", FirstName: "María", LastName: "González",
			Position: "Sales Representative", Department: "SALES",
			HireDate: hired("2021-01-11"), SalaryCents: 180000},
		{EmployeeCode: "EMP-004", NationalID: "E-8-157", FirstName: "John", LastName: "Smith",
			Email: "john.smith@example.com", Position: "Platform Engineer", Department: "TECHNOLOGY",
			HireDate: hired("2022-05-02"), SalaryCents: 500000},
		{EmployeeCode: "EMP-005", NationalID: "4PI-210-98765", FirstName: "Rosa", LastName: "Herrera",
			Position: "Operations Lead", Department: "OPERATIONS",
			HireDate: hired("2018-11-19"), SalaryCents: 360000},
	}
}

// withDatabase loads configuration, opens the database and runs fn.
func withDatabase(cmd *cobra.Command, fn func(ctx context.Context, db *postgres.DB) error) error {
	configPath, _ := cmd.Flags().GetString("config")
	level, _ := cmd.Flags().GetString("log-level")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger.Setup(logger.Options{
		Level:   level,
		Format:  "console",
		Service: "hrctl",
		Version: version,
		Output:  cmd.ErrOrStderr(),
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := postgres.NewConnection(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	return fn(ctx, db)
}
