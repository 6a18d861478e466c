package domain

import (
	"reflect"
	"testing"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "internet is slow", "internet is slow"},
		{"collapses runs", "internet   is \t slow", "internet is slow"},
		{"newlines become spaces", "line one\nline two\r\nline three", "line one line two line three"},
		{"leading and trailing stripped", "  padded text  ", "padded text"},
		{"control chars removed", "bad\x00byte\x07here", "badbytehere"},
		{"only whitespace", " \t\n ", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanText(tt.in)
			if got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
			// cleaning twice must not change the result
			if again := CleanText(got); again != got {
				t.Errorf("CleanText not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNewComplaintRecord(t *testing.T) {
	rec, err := NewComplaintRecord(" 100 ", "  internet\n drops  nightly ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.TicketID != "100" {
		t.Errorf("TicketID = %q, want trimmed %q", rec.TicketID, "100")
	}
	if rec.Text != "internet drops nightly" {
		t.Errorf("Text = %q, want cleaned text", rec.Text)
	}
}

func TestNewComplaintRecord_Invalid(t *testing.T) {
	if _, err := NewComplaintRecord("  ", "some text"); err == nil {
		t.Error("expected error for blank ticket ID")
	}
	if _, err := NewComplaintRecord("100", " \n\t "); err == nil {
		t.Error("expected error for whitespace-only text")
	}
}

func TestTicketIDs(t *testing.T) {
	chunks := []RetrievedChunk{
		{TicketID: "103"},
		{TicketID: "100"},
		{TicketID: "103"}, // second chunk of the same ticket
		{TicketID: ""},
		{TicketID: "205"},
	}

	got := TicketIDs(chunks)
	want := []string{"103", "100", "205"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TicketIDs = %v, want %v", got, want)
	}
}

func TestTicketIDs_Empty(t *testing.T) {
	if ids := TicketIDs(nil); len(ids) != 0 {
		t.Errorf("TicketIDs(nil) = %v, want empty", ids)
	}
}
