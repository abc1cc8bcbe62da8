package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--config="}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// ============================================================================
// Command Tests
// ============================================================================

func TestRun_DryRun(t *testing.T) {
	dir := t.TempDir()
	customers := writeFile(t, dir, "customers.csv",
		"first_name,last_name,email,phone,city,registration_date\n"+
			"Asha,Rao,asha@example.com,9876543210,Pune,2024-01-15\n")
	products := writeFile(t, dir, "products.csv",
		"product_name,category,price,stock_quantity\nPen,office,10,5\n")
	sales := writeFile(t, dir, "sales.csv",
		"transaction_id,customer_id,product_id,transaction_date,quantity,unit_price,status\n"+
			"T001,C001,P001,2024-01-15,2,10,Completed\n")
	report := filepath.Join(dir, "out", "report.txt")

	out, err := execute(t, "", "run", "--dry-run",
		"--customers", customers, "--products", products, "--sales", sales, "--report", report)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}

	if !strings.Contains(out, "records_loaded_successfully") {
		t.Errorf("table output missing outcome:\n%s", out)
	}
	data, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if !strings.Contains(string(data), "order_items_loaded: 1\n") {
		t.Errorf("report:\n%s", data)
	}
}

func TestRun_MissingSource(t *testing.T) {
	dir := t.TempDir()
	report := filepath.Join(dir, "report.txt")

	_, err := execute(t, "", "run", "--dry-run", "-q",
		"--customers", filepath.Join(dir, "nope.csv"), "--report", report)
	if err == nil {
		t.Fatal("expected an error for a missing source file")
	}
	if _, statErr := os.Stat(report); !os.IsNotExist(statErr) {
		t.Error("no report may be written when extraction fails")
	}
}

func TestSchema(t *testing.T) {
	out, err := execute(t, "", "schema")
	if err != nil {
		t.Fatal(err)
	}
	for _, table := range []string{"customers", "products", "orders", "order_items"} {
		if !strings.Contains(out, "CREATE TABLE IF NOT EXISTS "+table+" (") {
			t.Errorf("schema missing table %s", table)
		}
	}
}

func TestReset_Declined(t *testing.T) {
	out, err := execute(t, "no\n", "reset")
	if err == nil || !strings.Contains(err.Error(), "cancelled") {
		t.Fatalf("err = %v, want cancellation", err)
	}
	if !strings.Contains(out, "Type 'yes'") {
		t.Errorf("prompt not shown:\n%s", out)
	}
}
