// Package backend is the integration seam towards the system of record. The
// dashboard only talks to the Client interface; Stub is the default and
// HTTPClient is the network implementation.
package backend

import (
	"context"
	"strconv"

	"github.com/goliatone/go-pmr/pkg/model"
)

// Operation ids, shared with the embedded OpenAPI document.
const (
	OpGetContractData  = "getContractData"
	OpGetFinancialData = "getFinancialData"
	OpSavePMRData      = "savePMRData"
)

// ContractData is contract metadata as held by the backend.
type ContractData struct {
	ContractNumber string `json:"contractNumber"`
	ContractName   string `json:"contractName,omitempty"`
	ProgramManager string `json:"programManager,omitempty"`
	PopStart       string `json:"popStart,omitempty"`
	PopEnd         string `json:"popEnd,omitempty"`
	Status         string `json:"status,omitempty"`
}

// Fields maps the contract data onto form field names, skipping empty values.
func (c ContractData) Fields() map[string]string {
	return nonEmpty(map[string]string{
		model.FieldContractNumber: c.ContractNumber,
		model.FieldContractName:   c.ContractName,
		model.FieldPMName:         c.ProgramManager,
		model.FieldPopStart:       c.PopStart,
		model.FieldPopEnd:         c.PopEnd,
		model.FieldOverallStatus:  c.Status,
	})
}

// FinancialData is the financial position as held by the backend.
type FinancialData struct {
	ContractNumber string  `json:"contractNumber"`
	FundedValue    float64 `json:"fundedValue"`
	BilledToDate   float64 `json:"billedToDate"`
	BurnRate       float64 `json:"burnRate"`
	EAC            float64 `json:"eac"`
}

// Fields maps the financial data onto form field names. Zero amounts are
// written too; zero is a valid position.
func (f FinancialData) Fields() map[string]string {
	return map[string]string{
		model.FieldFundedValue:  formatAmount(f.FundedValue),
		model.FieldBilledToDate: formatAmount(f.BilledToDate),
		model.FieldBurnRate:     formatAmount(f.BurnRate),
		model.FieldEAC:          formatAmount(f.EAC),
	}
}

// PMRData is the payload persisted for a review.
type PMRData struct {
	ContractNumber string              `json:"contractNumber"`
	Snapshot       model.SlideSnapshot `json:"snapshot"`
}

// Client is the backend contract. Implementations return (nil, nil) when the
// backend has nothing for the contract.
type Client interface {
	FetchContractData(ctx context.Context, contractNumber string) (*ContractData, error)
	FetchFinancialData(ctx context.Context, contractNumber string) (*FinancialData, error)
	SavePMRData(ctx context.Context, data PMRData) error
}

// Stub is a Client that does nothing.
type Stub struct{}

var _ Client = Stub{}

// FetchContractData implements Client.
func (Stub) FetchContractData(context.Context, string) (*ContractData, error) {
	return nil, nil
}

// FetchFinancialData implements Client.
func (Stub) FetchFinancialData(context.Context, string) (*FinancialData, error) {
	return nil, nil
}

// SavePMRData implements Client.
func (Stub) SavePMRData(context.Context, PMRData) error {
	return nil
}

func nonEmpty(in map[string]string) map[string]string {
	for k, v := range in {
		if v == "" {
			delete(in, k)
		}
	}
	return in
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
