package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solventa-app/solventa/internal/collections"
	"github.com/solventa-app/solventa/internal/masterdata"
	"github.com/solventa-app/solventa/internal/rates"
	"github.com/solventa-app/solventa/internal/sales"
)

func sampleSale() sales.Sale {
	return sales.Sale{
		ID:                7,
		ClientID:          1,
		ProductID:         2,
		Date:              time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		FirstDueDate:      time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
		Principal:         1000,
		InstallmentCount:  10,
		InstallmentAmount: 130,
		TotalFinanced:     1300,
		InterestPct:       30,
		Rates:             rates.RateSet{TEM: 10, TNA: 120, TEA: 213.843},
		Plan:              "monthly",
		Status:            sales.StatusActive,
	}
}

func sampleClient() masterdata.Client {
	return masterdata.Client{
		ID:          1,
		LastName:    "Gomez",
		FirstName:   "Ana",
		DNI:         "30111222",
		HomeAddress: "Calle 12 n 340",
		City:        "La Plata",
		Province:    "Buenos Aires",
	}
}

func TestContractHTMLIncludesTermsAndParties(t *testing.T) {
	html, err := ContractHTML(ContractData{
		Sale:        sampleSale(),
		Client:      sampleClient(),
		Product:     masterdata.Product{ID: 2, Name: "Washing machine"},
		Salesperson: masterdata.Personnel{LastName: "Diaz", FirstName: "Pedro", Kind: masterdata.PersonnelSalesperson},
		GeneratedAt: time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Gomez, Ana")
	assert.Contains(t, html, "30111222")
	assert.Contains(t, html, "Washing machine")
	assert.Contains(t, html, "$1300.00")
	assert.Contains(t, html, "10/02/2025")
	assert.NotContains(t, html, "Guarantor")
}

func TestPromissoryHTMLGuarantorVariant(t *testing.T) {
	data := PromissoryData{
		Sale:        sampleSale(),
		Client:      sampleClient(),
		GeneratedAt: time.Now(),
	}

	html, err := PromissoryHTML(data)
	require.NoError(t, err)
	assert.NotContains(t, html, "guarantees")

	data.Guarantor = &masterdata.Guarantor{LastName: "Lopez", FirstName: "Mario", DNI: "28999888", City: "La Plata"}
	html, err = PromissoryHTML(data)
	require.NoError(t, err)
	assert.Contains(t, html, "Lopez, Mario")
	assert.Contains(t, html, "jointly and severally guarantees")
}

func TestStatementHTMLListsInstallmentsAndPayments(t *testing.T) {
	paidAt := time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC)
	installments := []collections.Installment{
		{Sequence: 1, DueDate: time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), OriginalAmount: 130, AmountPaid: 130, Paid: true, PaymentDate: &paidAt},
		{Sequence: 2, DueDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), OriginalAmount: 130},
	}
	html, err := StatementHTML(StatementData{
		Sale:         sampleSale(),
		Client:       sampleClient(),
		Installments: installments,
		Payments: []collections.Payment{
			{Date: paidAt, Amount: 130, Type: "FULL_PAYMENT", Receipt: "R-0001"},
		},
		Summary:     collections.Summarize(installments),
		GeneratedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.Contains(t, html, "09/02/2025")
	assert.Contains(t, html, "R-0001")
	assert.Contains(t, html, "$260.00")
	assert.Contains(t, html, "$130.00")
}
