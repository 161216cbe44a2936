package core

// validation.go checks each record for the fields an order needs.
//
// Every check runs on every record so a single pass reports all problems
// on a row, not just the first one. Codes are appended in a fixed order:
// Status, Customer_name, Email or Email_valid, Total or Total_parseable,
// Total_positive.

import (
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// Logical field aliases, tried in order.
var (
	StatusFields   = []string{"status"}
	CustomerFields = []string{"customer_name"}
	EmailFields    = []string{"email", "correo", "mail"}
	TotalFields    = []string{"total", "importe", "amount", "monto"}
	ProductFields  = []string{"product"}
	OrderIDFields  = []string{"order_id"}
)

// ValidationOutcome is the result of validating one record.
type ValidationOutcome struct {
	Codes []FieldCode // Missing/invalid fields; empty means valid

	Status   string // Lowercased status
	Customer string
	Email    string
	Total    string       // Raw total text
	Amount   *apd.Decimal // Parsed total; nil when absent or unparseable
}

// Valid reports whether no check failed.
func (o ValidationOutcome) Valid() bool {
	return len(o.Codes) == 0
}

// String joins the codes for log output.
func (o ValidationOutcome) String() string {
	parts := make([]string, len(o.Codes))
	for i, c := range o.Codes {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}

// ValidateRecord resolves and checks status, customer, email and total.
func ValidateRecord(rec *Record) ValidationOutcome {
	out := ValidationOutcome{
		Status:   strings.ToLower(rec.Field(StatusFields...)),
		Customer: rec.Field(CustomerFields...),
		Email:    rec.Field(EmailFields...),
		Total:    rec.Field(TotalFields...),
	}

	if out.Status == "" {
		out.Codes = append(out.Codes, CodeStatus)
	}
	if out.Customer == "" {
		out.Codes = append(out.Codes, CodeCustomerName)
	}

	switch {
	case out.Email == "":
		out.Codes = append(out.Codes, CodeEmail)
	case !IsValidEmail(out.Email):
		out.Codes = append(out.Codes, CodeEmailValid)
	}

	if out.Total == "" {
		out.Codes = append(out.Codes, CodeTotal)
	} else if amount, ok := ParseAmount(out.Total); !ok {
		out.Codes = append(out.Codes, CodeTotalParseable)
	} else {
		out.Amount = amount
		if amount.Sign() <= 0 {
			out.Codes = append(out.Codes, CodeTotalPositive)
		}
	}

	return out
}
