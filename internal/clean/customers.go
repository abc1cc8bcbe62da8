package clean

import (
	"context"

	"github.com/JonMunkholm/fleximart/internal/logging"
	"github.com/JonMunkholm/fleximart/internal/model"
	"github.com/JonMunkholm/fleximart/internal/normalize"
	"github.com/JonMunkholm/fleximart/internal/quality"
)

// Customers cleans the customers extract.
//
// Exact duplicates are removed after trimming. Phones are normalized and the
// registration date is parsed day-first. Rows without an email or a parsable
// registration date are dropped.
func Customers(ctx context.Context, raw []model.RawCustomer, m *quality.Metrics) []model.CleanCustomer {
	logger := logging.FromContext(ctx).With("entity", model.EntityCustomers)

	trimmed := make([]model.RawCustomer, len(raw))
	for i, r := range raw {
		trimmed[i] = trimCustomer(r)
	}

	unique, dups := dedup(trimmed, customerKey)
	m.Add(KeyCustomersDuplicates, dups)

	out := make([]model.CleanCustomer, 0, len(unique))
	missing := 0
	for _, r := range unique {
		regDate := normalize.ParseLocaleDate(r.RegistrationDate)
		if !r.Email.Valid || !regDate.Valid {
			missing++
			logger.Debug("dropping customer", "line", r.Line,
				"has_email", r.Email.Valid, "has_registration_date", regDate.Valid)
			continue
		}

		out = append(out, model.CleanCustomer{
			FirstName:        r.FirstName,
			LastName:         r.LastName,
			Email:            r.Email.String,
			Phone:            normalize.NormalizePhone(r.Phone),
			City:             r.City,
			RegistrationDate: regDate.Time,
		})
	}
	m.Add(KeyCustomersMissing, missing)

	logger.Info("customers cleaned",
		"read", len(raw),
		"duplicates", dups,
		"missing", missing,
		"kept", len(out),
	)
	return out
}

func trimCustomer(r model.RawCustomer) model.RawCustomer {
	r.FirstName = normalize.Trim(r.FirstName)
	r.LastName = normalize.Trim(r.LastName)
	r.Email = normalize.Trim(r.Email)
	r.Phone = normalize.Trim(r.Phone)
	r.City = normalize.Trim(r.City)
	r.RegistrationDate = normalize.Trim(r.RegistrationDate)
	return r
}

func customerKey(r model.RawCustomer) string {
	var b keyBuilder
	return b.text(r.FirstName).
		text(r.LastName).
		text(r.Email).
		text(r.Phone).
		text(r.City).
		text(r.RegistrationDate).
		String()
}
