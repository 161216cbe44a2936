package core

import (
	"bytes"
	"log/slog"
	"reflect"
	"strings"
	"testing"
)

func TestHeaderIndex_Lookup(t *testing.T) {
	idx := NewHeaderIndex([]string{
		"Order ID", "Customer Name", "Correo Electrónico", "Total (USD)", "Status",
	})

	tests := []struct {
		name   string
		lookup string
		want   HeaderKey
		found  bool
	}{
		{"exact match", "status", "status", true},
		{"exact after normalizing the name", "Customer Name", "customer_name", true},
		{"prefix match", "total", "total_(usd)", true},
		{"prefix across accented header", "correo", "correo_electrónico", true},
		{"absent", "email", "", false},
		{"absent prefix", "product", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := idx.Lookup(tt.lookup)
			if ok != tt.found || got != tt.want {
				t.Errorf("Lookup(%q) = %q, %v; want %q, %v", tt.lookup, got, ok, tt.want, tt.found)
			}
		})
	}
}

func TestHeaderIndex_ExactBeatsPrefix(t *testing.T) {
	idx := NewHeaderIndex([]string{"Amount Due", "Amount"})

	got, ok := idx.Lookup("amount")
	if !ok || got != "amount" {
		t.Errorf("Lookup(amount) = %q, %v; want exact header", got, ok)
	}
}

func TestHeaderIndex_PrefixUsesColumnOrder(t *testing.T) {
	idx := NewHeaderIndex([]string{"Total Net", "Total Gross"})

	got, ok := idx.Lookup("total")
	if !ok || got != "total_net" {
		t.Errorf("Lookup(total) = %q, %v; want total_net", got, ok)
	}
}

func TestHeaderIndex_Column(t *testing.T) {
	idx := NewHeaderIndex([]string{"Status", "Email", "email"})

	if col, ok := idx.Column("status"); !ok || col != 1 {
		t.Errorf("Column(status) = %d, %v; want 1", col, ok)
	}
	// Later duplicate wins.
	if col, ok := idx.Column("email"); !ok || col != 3 {
		t.Errorf("Column(email) = %d, %v; want 3", col, ok)
	}
	if _, ok := idx.Column("missing"); ok {
		t.Error("Column(missing) should not be found")
	}
}

func TestRecord_FieldAliases(t *testing.T) {
	_, records := ReadRecords([][]string{
		{"Customer Name", "Correo Electrónico", "Importe"},
		{"  Ana  ", " ana@example.com ", "10"},
	})
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]

	if got := rec.Field(CustomerFields...); got != "Ana" {
		t.Errorf("customer = %q, want Ana", got)
	}
	if got := rec.Field(EmailFields...); got != "ana@example.com" {
		t.Errorf("email = %q, want ana@example.com", got)
	}
	if got := rec.Field(TotalFields...); got != "10" {
		t.Errorf("total = %q, want 10", got)
	}
	if got := rec.Field(ProductFields...); got != "" {
		t.Errorf("product = %q, want empty", got)
	}
}

func TestRecord_DuplicateHeaderLaterValueWins(t *testing.T) {
	_, records := ReadRecords([][]string{
		{"Email", "email"},
		{"first@example.com", "second@example.com"},
	})

	rec := records[0]
	if got := rec.Get("email"); got != "second@example.com" {
		t.Errorf("Get(email) = %q, want the later value", got)
	}
	if got := rec.Fields(); !reflect.DeepEqual(got, []HeaderKey{"email"}) {
		t.Errorf("Fields() = %v, want [email]", got)
	}
}

func TestReadRecords(t *testing.T) {
	t.Run("empty sheet", func(t *testing.T) {
		idx, records := ReadRecords(nil)
		if len(records) != 0 || len(idx.Headers()) != 0 {
			t.Errorf("expected no headers and no records, got %v and %d", idx.Headers(), len(records))
		}
	})

	t.Run("rows numbered from 2 and short rows padded", func(t *testing.T) {
		_, records := ReadRecords([][]string{
			{"Status", "Customer Name", "Email"},
			{"new", "Ana"},
			{},
			{"new", "Bob", "bob@example.com", "extra"},
		})
		if len(records) != 3 {
			t.Fatalf("got %d records, want 3", len(records))
		}
		for i, rec := range records {
			if rec.Row() != i+2 {
				t.Errorf("record %d row = %d, want %d", i, rec.Row(), i+2)
			}
		}
		if got := records[0].Get("email"); got != "" {
			t.Errorf("missing trailing cell = %q, want empty", got)
		}
		if got := records[1].Get("status"); got != "" {
			t.Errorf("blank row status = %q, want empty", got)
		}
		if got := records[2].Get("email"); got != "bob@example.com" {
			t.Errorf("email = %q, want bob@example.com", got)
		}
	})
}

func TestRecord_LogValue(t *testing.T) {
	_, records := ReadRecords([][]string{
		{"Status", "E-mail"},
		{" new ", "ana@example.com"},
	})

	var buf bytes.Buffer
	slog.New(slog.NewJSONHandler(&buf, nil)).Info("row", "record", records[0])

	want := `"record":{"row":2,"status":"new","e_mail":"ana@example.com"}`
	if !strings.Contains(buf.String(), want) {
		t.Errorf("log line = %s, want it to contain %s", buf.String(), want)
	}
}
