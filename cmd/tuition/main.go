package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Reasonofmoon/tuition-automation/internal/billing"
	"github.com/Reasonofmoon/tuition-automation/internal/cli"
	"github.com/Reasonofmoon/tuition-automation/internal/core"
	"github.com/Reasonofmoon/tuition-automation/internal/log"
	"github.com/Reasonofmoon/tuition-automation/internal/report"
	"github.com/Reasonofmoon/tuition-automation/internal/roster"
	"github.com/Reasonofmoon/tuition-automation/internal/transfer"
)

const usage = `Usage: tuition <command> [args]

Commands:
  dashboard                      current-month overview
  students                       list students
  student-add <name> <class> <fee> [sibling-group]
  student-search <term>          search students by name or class
  student-update <id> <field> <value>
                                 edit a student field (name, class, fee,
                                 sibling-group, phone, date, notes)
  student-delete <id>            delete a student (ledgers are kept)
  student-import <file.csv>      import students from CSV
  student-export <file.csv>      export students to CSV
  classes                        list classes
  class-add <name> <fee>         add a class
  class-update <id> <field> <value>
                                 edit a class field (name, fee, schedule,
                                 time, capacity, notes)
  class-delete <id>              delete a class
  ledger <YYYY-MM>               show the month's payment table
  generate <YYYY-MM>             (re)generate the month's ledger
  pay <YYYY-MM> <student-id>     quick-pay a student
  set <YYYY-MM> <student-id> <field> <value>
                                 edit a ledger field (sibling-discount,
                                 discount, book-fee, status, date, notes)
  report <start> <end>           multi-month report (YYYY-MM, inclusive)
  export-xlsx <YYYY-MM>          export the month's ledger spreadsheet
  academy <name>                 set the academy name
`

type app struct {
	roster  *roster.Service
	billing *billing.Service
	reports *report.Service
	logger  *log.Logger
	export  string
}

func main() {
	logger := cli.SetupLogger()
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	backendResult := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if backendResult.Cleanup != nil {
			if err := backendResult.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", log.FieldError, err)
			}
		}
	}()

	repo := backendResult.Repository
	reports := report.NewServiceWithCache(repo, cfg.ReportCacheSize, cfg.ReportCacheTTL)
	a := &app{
		roster:  roster.NewService(repo, reports),
		billing: billing.NewService(repo, reports),
		reports: reports,
		logger:  logger,
		export:  cfg.ExportDir,
	}

	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(2)
	}
	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			fmt.Fprintln(os.Stderr, "not found")
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "dashboard":
		return a.dashboard(ctx)
	case "students":
		return a.listStudents(ctx)
	case "student-add":
		return a.addStudent(ctx, args)
	case "student-search":
		return a.searchStudents(ctx, args)
	case "student-update":
		return a.updateStudent(ctx, args)
	case "student-delete":
		return a.deleteStudent(ctx, args)
	case "student-import":
		return a.importStudents(ctx, args)
	case "student-export":
		return a.exportStudents(ctx, args)
	case "classes":
		return a.listClasses(ctx)
	case "class-add":
		return a.addClass(ctx, args)
	case "class-update":
		return a.updateClass(ctx, args)
	case "class-delete":
		return a.deleteClass(ctx, args)
	case "ledger":
		return a.showLedger(ctx, args)
	case "generate":
		return a.generate(ctx, args)
	case "pay":
		return a.quickPay(ctx, args)
	case "set":
		return a.setPaymentField(ctx, args)
	case "report":
		return a.report(ctx, args)
	case "export-xlsx":
		return a.exportXLSX(ctx, args)
	case "academy":
		return a.setAcademy(ctx, args)
	default:
		fmt.Print(usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) dashboard(ctx context.Context) error {
	d, err := a.reports.Dashboard(ctx, time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", d.Month.Label())
	fmt.Printf("students: %d  expected: %s  paid: %d  unpaid: %d\n",
		d.TotalStudents, d.ExpectedRevenue, d.PaidCount, d.UnpaidCount)
	if len(d.Recent) > 0 {
		fmt.Println("recent payments:")
		for _, p := range d.Recent {
			fmt.Printf("  %s  %s  %s\n", p.PaymentDate, p.StudentName, p.Amount)
		}
	}
	if len(d.Revenue) > 0 {
		fmt.Println("revenue:")
		for _, m := range d.Revenue {
			fmt.Printf("  %s  %s\n", m.Month, m.Revenue)
		}
	}
	return nil
}

func (a *app) listStudents(ctx context.Context) error {
	students, err := a.roster.Students(ctx)
	if err != nil {
		return err
	}
	for _, s := range students {
		group := s.SiblingGroup
		if group == "" {
			group = "-"
		}
		fmt.Printf("%s  %-10s  %-8s  %10s  %s\n", s.ID, s.Name, s.ClassName, s.BaseFee, group)
	}
	return nil
}

func (a *app) addStudent(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: student-add <name> <class> <fee> [sibling-group]")
	}
	fee, err := core.ParseAmount(args[2])
	if err != nil {
		return fmt.Errorf("fee %q: %w", args[2], err)
	}
	s := core.Student{
		Name:             args[0],
		ClassName:        args[1],
		BaseFee:          fee,
		RegistrationDate: time.Now().Format("2006-01-02"),
	}
	if len(args) > 3 {
		s.SiblingGroup = args[3]
	}
	stored, err := a.roster.AddStudent(ctx, s)
	if err != nil {
		return err
	}
	fmt.Println("added", stored.ID)
	return nil
}

func (a *app) searchStudents(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: student-search <term>")
	}
	students, err := a.roster.SearchStudents(ctx, args[0])
	if err != nil {
		return err
	}
	for _, s := range students {
		fmt.Printf("%s  %-10s  %-8s  %10s\n", s.ID, s.Name, s.ClassName, s.BaseFee)
	}
	return nil
}

func (a *app) updateStudent(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: student-update <id> <field> <value>")
	}
	id, field, value := args[0], args[1], args[2]

	var patch core.StudentPatch
	switch field {
	case "name":
		patch.Name = &value
	case "class":
		patch.ClassName = &value
	case "fee":
		fee, err := core.ParseAmount(value)
		if err != nil {
			return fmt.Errorf("fee %q: %w", value, err)
		}
		patch.BaseFee = &fee
	case "sibling-group":
		patch.SiblingGroup = &value
	case "phone":
		patch.Phone = &value
	case "date":
		patch.RegistrationDate = &value
	case "notes":
		patch.Notes = &value
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	updated, err := a.roster.UpdateStudent(ctx, id, patch)
	if err != nil {
		return err
	}
	fmt.Println("updated", updated.ID)
	return nil
}

func (a *app) deleteStudent(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: student-delete <id>")
	}
	s, err := a.roster.Students(ctx)
	if err != nil {
		return err
	}
	name := args[0]
	for _, st := range s {
		if st.ID == args[0] {
			name = st.Name
			break
		}
	}
	if !cli.Confirm(fmt.Sprintf("Delete student %s? Payment history is kept.", name)) {
		fmt.Println("cancelled")
		return nil
	}
	if err := a.roster.DeleteStudent(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("deleted")
	return nil
}

func (a *app) importStudents(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: student-import <file.csv>")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	students, err := transfer.ParseStudentsCSV(f)
	if err != nil {
		return err
	}
	added, err := a.roster.ImportStudents(ctx, students)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d students\n", added)
	return nil
}

func (a *app) exportStudents(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: student-export <file.csv>")
	}
	students, err := a.roster.Students(ctx)
	if err != nil {
		return err
	}
	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	if err := transfer.WriteStudentsCSV(f, students); err != nil {
		return err
	}
	fmt.Printf("exported %d students to %s\n", len(students), args[0])
	return nil
}

func (a *app) listClasses(ctx context.Context) error {
	classes, err := a.roster.Classes(ctx)
	if err != nil {
		return err
	}
	counts, err := a.roster.ClassStudentCounts(ctx)
	if err != nil {
		return err
	}
	for _, c := range classes {
		fmt.Printf("%s  %-10s  %10s  %d명\n", c.ID, c.Name, c.DefaultFee, counts[c.Name])
	}
	return nil
}

func (a *app) addClass(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: class-add <name> <fee>")
	}
	fee, err := core.ParseAmount(args[1])
	if err != nil {
		return fmt.Errorf("fee %q: %w", args[1], err)
	}
	stored, err := a.roster.AddClass(ctx, core.Class{Name: args[0], DefaultFee: fee})
	if err != nil {
		return err
	}
	fmt.Println("added", stored.ID)
	return nil
}

func (a *app) updateClass(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: class-update <id> <field> <value>")
	}
	id, field, value := args[0], args[1], args[2]

	var patch core.ClassPatch
	switch field {
	case "name":
		patch.Name = &value
	case "fee":
		fee, err := core.ParseAmount(value)
		if err != nil {
			return fmt.Errorf("fee %q: %w", value, err)
		}
		patch.DefaultFee = &fee
	case "schedule":
		patch.Schedule = &value
	case "time":
		patch.Time = &value
	case "capacity":
		patch.Capacity = &value
	case "notes":
		patch.Notes = &value
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	updated, err := a.roster.UpdateClass(ctx, id, patch)
	if err != nil {
		return err
	}
	fmt.Println("updated", updated.ID)
	return nil
}

func (a *app) deleteClass(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: class-delete <id>")
	}
	if !cli.Confirm("Delete this class? Students keep their class name.") {
		fmt.Println("cancelled")
		return nil
	}
	if err := a.roster.DeleteClass(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("deleted")
	return nil
}

func (a *app) showLedger(ctx context.Context, args []string) error {
	ym, err := parseMonthArg(args)
	if err != nil {
		return err
	}
	rows, err := a.billing.Rows(ctx, ym)
	if err != nil {
		return err
	}
	for _, r := range rows {
		status := "-"
		date := "-"
		if r.ShowPaymentFields {
			status = string(r.Payment.Status.OrUnpaid())
			if r.Payment.PaymentDate != "" {
				date = r.Payment.PaymentDate
			}
		}
		marker := " "
		if r.InGroup {
			marker = "*"
		}
		fmt.Printf("%s %-10s %-8s %10s %14s  %-14s %s\n",
			marker, r.Student.Name, r.Student.ClassName, r.Total, r.DisplayTotal, status, date)
	}
	return nil
}

func (a *app) generate(ctx context.Context, args []string) error {
	ym, err := parseMonthArg(args)
	if err != nil {
		return err
	}
	exists, err := a.billing.HasLedger(ctx, ym)
	if err != nil {
		return err
	}
	if exists && !cli.Confirm(fmt.Sprintf("A ledger for %s already exists. Reset it?", ym)) {
		fmt.Println("cancelled")
		return nil
	}
	n, err := a.billing.GenerateLedger(ctx, ym)
	if err != nil {
		return err
	}
	fmt.Printf("generated %d records for %s\n", n, ym)
	return nil
}

func (a *app) quickPay(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: pay <YYYY-MM> <student-id>")
	}
	ym, err := core.ParseYearMonth(args[0])
	if err != nil {
		return err
	}
	if err := a.billing.QuickPay(ctx, ym, args[1], time.Now()); err != nil {
		return err
	}
	fmt.Println("paid")
	return nil
}

func (a *app) setPaymentField(ctx context.Context, args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("usage: set <YYYY-MM> <student-id> <field> <value>")
	}
	ym, err := core.ParseYearMonth(args[0])
	if err != nil {
		return err
	}
	id, field, value := args[1], args[2], args[3]

	amount := func() (core.Amount, error) {
		v, err := core.ParseAmount(value)
		if err != nil {
			return 0, fmt.Errorf("%s %q: %w", field, value, err)
		}
		return v, nil
	}
	switch field {
	case "sibling-discount":
		v, err := amount()
		if err != nil {
			return err
		}
		return a.billing.SetSiblingDiscount(ctx, ym, id, v)
	case "discount":
		v, err := amount()
		if err != nil {
			return err
		}
		return a.billing.SetIndividualDiscount(ctx, ym, id, v)
	case "book-fee":
		v, err := amount()
		if err != nil {
			return err
		}
		return a.billing.SetBookFee(ctx, ym, id, v)
	case "status":
		return a.billing.SetStatus(ctx, ym, id, core.PaymentStatus(value))
	case "date":
		return a.billing.SetPaymentDate(ctx, ym, id, value)
	case "notes":
		return a.billing.SetNotes(ctx, ym, id, value)
	default:
		return fmt.Errorf("unknown field %q", field)
	}
}

func (a *app) report(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: report <start YYYY-MM> <end YYYY-MM>")
	}
	start, err := core.ParseYearMonth(args[0])
	if err != nil {
		return err
	}
	end, err := core.ParseYearMonth(args[1])
	if err != nil {
		return err
	}
	rows, summary, err := a.reports.Range(ctx, start, end)
	if err != nil {
		return err
	}
	for _, r := range rows {
		fmt.Printf("%s  fee %14s  discount %12s  revenue %14s  rate %5.1f%%\n",
			r.Month.Label(), r.TotalFee, r.TotalDiscount, r.ActualRevenue, r.PaymentRate)
	}
	fmt.Printf("total revenue %s  average rate %.1f%%  months %d\n",
		summary.TotalRevenue, summary.AvgPaymentRate, summary.Months)
	return nil
}

func (a *app) exportXLSX(ctx context.Context, args []string) error {
	ym, err := parseMonthArg(args)
	if err != nil {
		return err
	}
	rows, err := a.billing.Rows(ctx, ym)
	if err != nil {
		return err
	}
	students := make([]core.Student, 0, len(rows))
	ledger := make([]core.PaymentRecord, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.Student)
		ledger = append(ledger, r.Payment)
	}
	academy, err := a.roster.AcademyName(ctx)
	if err != nil {
		return err
	}
	path := filepath.Join(a.export, transfer.XLSXFilename(academy, ym))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := transfer.WritePaymentsXLSX(f, students, ledger); err != nil {
		return err
	}
	fmt.Println("wrote", path)
	return nil
}

func (a *app) setAcademy(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: academy <name>")
	}
	if err := a.roster.SetAcademyName(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("saved")
	return nil
}

func parseMonthArg(args []string) (core.YearMonth, error) {
	if len(args) < 1 {
		return core.YearMonth{}, fmt.Errorf("missing YYYY-MM argument")
	}
	return core.ParseYearMonth(args[0])
}
