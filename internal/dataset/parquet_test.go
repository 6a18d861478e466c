package dataset

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
)

type parquetTestRow struct {
	TicketID  string `parquet:"Ticket_#"`
	Complaint string `parquet:"Customer_Complaint"`
	Status    string `parquet:"Status"`
}

func writeTempParquet(t *testing.T, rows []parquetTestRow) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "complaints.parquet")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create temp parquet: %v", err)
	}
	defer f.Close()

	w := parquet.NewGenericWriter[parquetTestRow](f)
	if _, err := w.Write(rows); err != nil {
		t.Fatalf("write parquet rows: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close parquet writer: %v", err)
	}
	return path
}

func TestParquetReader_ReadsRows(t *testing.T) {
	path := writeTempParquet(t, []parquetTestRow{
		{TicketID: "100", Complaint: "slow internet", Status: "Open"},
		{TicketID: "101", Complaint: "billing dispute", Status: "Closed"},
	})

	r, err := OpenParquet(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r.Close()

	first, err := r.Read()
	if err != nil {
		t.Fatalf("read first row: %v", err)
	}
	if first["ticket_#"] != "100" || first["customer_complaint"] != "slow internet" {
		t.Errorf("unexpected first row: %v", first)
	}

	second, err := r.Read()
	if err != nil {
		t.Fatalf("read second row: %v", err)
	}
	if second["status"] != "Closed" {
		t.Errorf("unexpected second row: %v", second)
	}

	if _, err := r.Read(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestOpenParquet_NotParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.parquet")
	if err := os.WriteFile(path, []byte("not a parquet file"), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if _, err := OpenParquet(path); err == nil {
		t.Fatal("expected error for non-parquet file")
	}
}
