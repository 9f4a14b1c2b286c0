package migrations

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"VisitsBackfill/store"
)

const (
	AdminIdField    = "adminId"
	EmployeeIdField = "employeeId"
)

var (
	errMissingEmployeeId = errors.New("missing employeeId")
	errEmployeeNotFound  = errors.New("employee not found")
	errEmployeeNoAdminId = errors.New("employee has no adminId")
)

type Summary struct {
	Total      int
	Updated    int
	Errors     int
	AlreadyHad int
}

type outcome int

const (
	skipped outcome = iota
	updated
	failed
)

// VisitAdminIdMigration copies users.adminId onto every visit that lacks one.
type VisitAdminIdMigration struct {
	Store  store.Store
	Visits string
	Users  string
	Logger *log.Logger
}

func NewVisitAdminIdMigration(s store.Store, visits, users string) *VisitAdminIdMigration {
	return &VisitAdminIdMigration{
		Store:  s,
		Visits: visits,
		Users:  users,
		Logger: log.New(os.Stdout, "", 0),
	}
}

/*
* List every visit, a failure here aborts the run
* Classify each visit one at a time, errors only bump the counter
* Print the summary
 */
func (m *VisitAdminIdMigration) Run(ctx context.Context) (Summary, error) {
	m.Logger.Println("Starting migration: Adding adminId to visits...")
	m.Logger.Println()

	visits, err := m.Store.ListAll(ctx, m.Visits)
	if err != nil {
		m.Logger.Println("Migration failed:", err)
		return Summary{}, fmt.Errorf("list %s: %w", m.Visits, err)
	}

	sum := Summary{Total: len(visits)}
	m.Logger.Printf("Found %d visits to process\n\n", sum.Total)
	if sum.Total == 0 {
		m.Logger.Println("No visits found. Migration complete.")
		return sum, nil
	}

	for i, visit := range visits {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		progress := fmt.Sprintf("[%d/%d]", i+1, sum.Total)
		switch m.migrateVisit(ctx, progress, visit) {
		case updated:
			sum.Updated++
		case failed:
			sum.Errors++
		}
	}
	sum.AlreadyHad = sum.Total - sum.Updated - sum.Errors

	m.printSummary(sum)
	return sum, nil
}

func (m *VisitAdminIdMigration) migrateVisit(ctx context.Context, progress string, visit store.Document) (result outcome) {
	defer func() {
		if r := recover(); r != nil {
			m.Logger.Printf("✗ %s Error processing visit %s: %v\n", progress, visit.ID, r)
			result = failed
		}
	}()

	// Presence of the key is enough, whatever its value.
	if visit.Has(AdminIdField) {
		m.Logger.Printf("✓ %s Visit %s already has adminId: %v\n", progress, visit.ID, visit.Fields[AdminIdField])
		return skipped
	}

	adminId, err := m.lookupAdminId(ctx, visit)
	if err != nil {
		m.Logger.Printf("✗ %s Error processing visit %s: %v\n", progress, visit.ID, err)
		return failed
	}

	err = m.Store.UpdateFields(ctx, m.Visits, visit.ID, map[string]interface{}{AdminIdField: adminId})
	if err != nil {
		m.Logger.Printf("✗ %s Error processing visit %s: %v\n", progress, visit.ID, err)
		return failed
	}
	m.Logger.Printf("✓ %s Visit %s → adminId: %v\n", progress, visit.ID, adminId)
	return updated
}

func (m *VisitAdminIdMigration) lookupAdminId(ctx context.Context, visit store.Document) (interface{}, error) {
	employeeId := visit.String(EmployeeIdField)
	if employeeId == "" {
		return nil, errMissingEmployeeId
	}
	employee, ok, err := m.Store.GetByID(ctx, m.Users, employeeId)
	if err != nil {
		return nil, fmt.Errorf("fetch employee %s: %w", employeeId, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", errEmployeeNotFound, employeeId)
	}
	adminId, present := employee.Fields[AdminIdField]
	if !present || adminId == nil || adminId == "" {
		return nil, fmt.Errorf("%w: %s", errEmployeeNoAdminId, employeeId)
	}
	return adminId, nil
}

func (m *VisitAdminIdMigration) printSummary(sum Summary) {
	rule := strings.Repeat("=", 60)
	m.Logger.Println()
	m.Logger.Println(rule)
	m.Logger.Println("Migration Summary:")
	m.Logger.Printf("  Total visits:   %d\n", sum.Total)
	m.Logger.Printf("  Updated:        %d\n", sum.Updated)
	m.Logger.Printf("  Errors:         %d\n", sum.Errors)
	m.Logger.Printf("  Already had ID: %d\n", sum.AlreadyHad)
	m.Logger.Println(rule)
}
