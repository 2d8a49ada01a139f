package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"ngpayroll/internal/app"
	"ngpayroll/internal/domain/audit"
	"ngpayroll/internal/domain/payroll"
)

type periodFlags struct {
	month int
	year  int
}

func (p *periodFlags) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.month, "month", 0, "payroll month (1-12)")
	cmd.Flags().IntVar(&p.year, "year", 0, "payroll year")
	_ = cmd.MarkFlagRequired("month")
	_ = cmd.MarkFlagRequired("year")
}

func (c *cli) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	a, err := c.open(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(cmd.Context(), a)
}

func (c *cli) calcCommand() *cobra.Command {
	var employee payroll.Employee
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Compute the statutory breakdown for one employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b := payroll.CalculateBreakdown(employee)
			if c.opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), b)
			}
			return renderBreakdown(cmd.OutOrStdout(), b)
		},
	}
	flags := cmd.Flags()
	flags.Float64Var(&employee.BasicSalary, "basic", 0, "monthly basic salary")
	flags.Float64Var(&employee.HousingAllowance, "housing", 0, "monthly housing allowance")
	flags.Float64Var(&employee.TransportAllowance, "transport", 0, "monthly transport allowance")
	flags.Float64Var(&employee.OtherAllowances, "other", 0, "other monthly allowances")
	flags.Float64Var(&employee.Loan, "loan", 0, "loan repayment")
	flags.Float64Var(&employee.Advance, "advance", 0, "salary advance recovery")
	flags.Float64Var(&employee.OtherDeductions, "other-deductions", 0, "other deductions")
	return cmd
}

func (c *cli) createCommand() *cobra.Command {
	var period periodFlags
	var employeesFile string
	var submit bool
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a payroll submission from an employee file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var employees []payroll.Employee
			if employeesFile != "" {
				var err error
				if employees, err = readEmployees(employeesFile); err != nil {
					return err
				}
			}
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				sub, err := a.Payroll.Create(ctx, payroll.CreateInput{
					Month:     period.month,
					Year:      period.year,
					Employees: employees,
					Actor:     c.opts.actor,
					Submit:    submit,
				})
				if err != nil {
					return err
				}
				return c.printSubmission(cmd, sub)
			})
		},
	}
	period.bind(cmd)
	cmd.Flags().StringVar(&employeesFile, "employees", "", "JSON or YAML list of employees")
	cmd.Flags().BoolVar(&submit, "submit", false, "submit to Finance instead of saving a draft")
	return cmd
}

func (c *cli) seedCommand() *cobra.Command {
	var period periodFlags
	var rosterFile string
	var submit bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a payroll submission from the active employee roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				var (
					sub payroll.Submission
					err error
				)
				if rosterFile != "" {
					var employees []payroll.Employee
					employees, err = payroll.SeedEmployees(ctx, payroll.NewFileRoster(rosterFile))
					if err != nil {
						return err
					}
					sub, err = a.Payroll.Create(ctx, payroll.CreateInput{
						Month: period.month, Year: period.year, Employees: employees, Actor: c.opts.actor, Submit: submit,
					})
				} else {
					sub, err = a.Payroll.CreateFromRoster(ctx, period.month, period.year, c.opts.actor, submit)
				}
				if err != nil {
					return err
				}
				return c.printSubmission(cmd, sub)
			})
		},
	}
	period.bind(cmd)
	cmd.Flags().StringVar(&rosterFile, "roster", "", "roster file to seed from instead of ROSTER_FILE / ROSTER_SOURCE")
	cmd.Flags().BoolVar(&submit, "submit", false, "submit to Finance instead of saving a draft")
	return cmd
}

func (c *cli) editCommand() *cobra.Command {
	var employeesFile, addFile, replaceFile, removeID string
	var submit bool
	cmd := &cobra.Command{
		Use:   "edit <submission-id>",
		Short: "Edit the roster of a draft or rejected submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				var (
					sub payroll.Submission
					err error
				)
				switch {
				case employeesFile != "":
					var employees []payroll.Employee
					if employees, err = readEmployees(employeesFile); err != nil {
						return err
					}
					sub, err = a.Payroll.Update(ctx, id, payroll.UpdateInput{Employees: employees, Actor: c.opts.actor, Submit: submit})
				case addFile != "":
					var employee payroll.Employee
					if employee, err = readEmployee(addFile); err != nil {
						return err
					}
					sub, err = a.Payroll.AddEmployee(ctx, id, c.opts.actor, employee, submit)
				case replaceFile != "":
					var employee payroll.Employee
					if employee, err = readEmployee(replaceFile); err != nil {
						return err
					}
					sub, err = a.Payroll.ReplaceEmployee(ctx, id, c.opts.actor, employee, submit)
				case removeID != "":
					sub, err = a.Payroll.RemoveEmployee(ctx, id, c.opts.actor, removeID, submit)
				default:
					return errors.New("one of --employees, --add, --replace or --remove is required")
				}
				if err != nil {
					return err
				}
				return c.printSubmission(cmd, sub)
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&employeesFile, "employees", "", "replace the whole roster from a JSON or YAML file")
	flags.StringVar(&addFile, "add", "", "add one employee from a JSON or YAML file")
	flags.StringVar(&replaceFile, "replace", "", "replace one employee (matched by employeeId) from a file")
	flags.StringVar(&removeID, "remove", "", "remove the employee with this ID")
	flags.BoolVar(&submit, "submit", false, "submit to Finance after editing")
	cmd.MarkFlagsMutuallyExclusive("employees", "add", "replace", "remove")
	return cmd
}

func (c *cli) transitionCommand(use, short string, run func(ctx context.Context, svc *payroll.Service, id string) (payroll.Submission, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <submission-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				sub, err := run(ctx, a.Payroll, args[0])
				if err != nil {
					return err
				}
				return c.printSubmission(cmd, sub)
			})
		},
	}
}

func (c *cli) submitCommand() *cobra.Command {
	return c.transitionCommand("submit", "Submit a draft to Finance", func(ctx context.Context, svc *payroll.Service, id string) (payroll.Submission, error) {
		return svc.Submit(ctx, id, c.opts.actor)
	})
}

func (c *cli) approveCommand() *cobra.Command {
	var comments string
	cmd := c.transitionCommand("approve", "Approve a submitted payroll", func(ctx context.Context, svc *payroll.Service, id string) (payroll.Submission, error) {
		return svc.Approve(ctx, id, c.opts.actor, comments)
	})
	cmd.Flags().StringVar(&comments, "comments", "", "approval comments")
	return cmd
}

func (c *cli) rejectCommand() *cobra.Command {
	var reason string
	cmd := c.transitionCommand("reject", "Send a submitted payroll back to HR", func(ctx context.Context, svc *payroll.Service, id string) (payroll.Submission, error) {
		return svc.Reject(ctx, id, c.opts.actor, reason)
	})
	cmd.Flags().StringVar(&reason, "reason", "", "why the payroll is rejected")
	return cmd
}

func (c *cli) payCommand() *cobra.Command {
	return c.transitionCommand("pay", "Mark an approved payroll as paid", func(ctx context.Context, svc *payroll.Service, id string) (payroll.Submission, error) {
		return svc.MarkPaid(ctx, id, c.opts.actor)
	})
}

func (c *cli) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <submission-id>",
		Short: "Delete a draft or rejected submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Payroll.Delete(ctx, args[0], c.opts.actor); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return err
			})
		},
	}
}

func (c *cli) listCommand() *cobra.Command {
	var filter payroll.Filter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List payroll submissions, newest period first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				subs, err := a.Payroll.List(ctx, filter)
				if err != nil {
					return err
				}
				if c.opts.jsonOut {
					return writeJSON(cmd.OutOrStdout(), subs)
				}
				return renderSubmissions(cmd.OutOrStdout(), subs)
			})
		},
	}
	cmd.Flags().StringVar(&filter.Status, "status", "", "only this status")
	cmd.Flags().IntVar(&filter.Year, "year", 0, "only this year")
	return cmd
}

func (c *cli) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <submission-id>",
		Short: "Show a submission with per-employee breakdowns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				sub, err := a.Payroll.Get(ctx, args[0])
				if err != nil {
					return err
				}
				summary, err := a.Payroll.Summary(ctx, sub.ID)
				if err != nil {
					return err
				}
				if c.opts.jsonOut {
					return writeJSON(cmd.OutOrStdout(), struct {
						Submission payroll.Submission  `json:"submission"`
						Breakdowns []payroll.Breakdown `json:"breakdowns"`
						Summary    payroll.Summary     `json:"summary"`
					}{sub, payroll.Breakdowns(sub.Employees), summary})
				}
				return renderSubmissionDetail(cmd.OutOrStdout(), sub, summary)
			})
		},
	}
}

func (c *cli) payslipCommand() *cobra.Command {
	var employeeID string
	cmd := &cobra.Command{
		Use:   "payslip <submission-id>",
		Short: "Write PDF payslips for a submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				sub, err := a.Payroll.Get(ctx, args[0])
				if err != nil {
					return err
				}
				var paths []string
				if employeeID != "" {
					path, err := a.Payslips.Write(sub, employeeID)
					if err != nil {
						return err
					}
					paths = []string{path}
				} else if paths, err = a.Payslips.WriteAll(ctx, sub); err != nil {
					return err
				}
				for _, path := range paths {
					if _, err := fmt.Fprintln(cmd.OutOrStdout(), path); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&employeeID, "employee", "", "only this employee")
	return cmd
}

func (c *cli) exportCommand() *cobra.Command {
	var kind, out string
	cmd := &cobra.Command{
		Use:   "export <submission-id>",
		Short: "Export the payroll register or journal as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			write := payroll.WriteRegisterCSV
			switch kind {
			case "register":
			case "journal":
				write = payroll.WriteJournalCSV
			default:
				return fmt.Errorf("--kind must be register or journal (got %q)", kind)
			}
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				sub, err := a.Payroll.Get(ctx, args[0])
				if err != nil {
					return err
				}
				if out == "" || out == "-" {
					return write(cmd.OutOrStdout(), sub)
				}
				file, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
				if err != nil {
					return err
				}
				if err := write(file, sub); err != nil {
					_ = file.Close()
					return err
				}
				return file.Close()
			})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "register", "register or journal")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func (c *cli) historyCommand() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "history <submission-id>",
		Short: "Show the audit trail of a submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive (got %d)", limit)
			}
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				total, events, err := a.History(ctx, args[0], limit, offset)
				if err != nil {
					return err
				}
				if c.opts.jsonOut {
					return writeJSON(cmd.OutOrStdout(), struct {
						Total  int           `json:"total"`
						Events []audit.Event `json:"events"`
					}{total, events})
				}
				return renderHistory(cmd.OutOrStdout(), total, events)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum events to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "events to skip")
	return cmd
}

func (c *cli) printSubmission(cmd *cobra.Command, sub payroll.Submission) error {
	if c.opts.jsonOut {
		return writeJSON(cmd.OutOrStdout(), sub)
	}
	return renderSubmissions(cmd.OutOrStdout(), []payroll.Submission{sub})
}

func readEmployees(path string) ([]payroll.Employee, error) {
	var employees []payroll.Employee
	if err := decodeFile(path, &employees); err != nil {
		return nil, err
	}
	return employees, nil
}

func readEmployee(path string) (payroll.Employee, error) {
	var employee payroll.Employee
	if err := decodeFile(path, &employee); err != nil {
		return payroll.Employee{}, err
	}
	return employee, nil
}

func decodeFile(path string, dst any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, dst)
	default:
		err = json.Unmarshal(raw, dst)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
