package crunchbase

import (
	"context"
	"testing"

	"github.com/Sternrassler/crunchbase-client/internal/testutil"
	"github.com/Sternrassler/crunchbase-client/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const acmeCompany = `{
  "name": "Widgets Inc",
  "funding_rounds": [
    {"round_code": "a", "investments": [
      {"company": null, "financial_org": {"name": "Acme Ventures", "permalink": "acme-ventures"}, "person": null}
    ]},
    {"round_code": "b", "investments": [
      {"company": null, "financial_org": {"name": "Acme Ventures", "permalink": "acme-ventures"}, "person": null}
    ]}
  ]
}`

func TestListCompanyInvestors(t *testing.T) {
	cb, mock := newTestAPI(t)
	mock.SetResponse("/v1/company/widgets.js", testutil.NewJSONResponse(acmeCompany))

	investors, err := cb.ListCompanyInvestors(context.Background(), "widgets")
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme Ventures"}, investors)
}

func TestCompanyInvestors(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		want    []string
		wantErr bool
	}{
		{
			name: "first-seen order with people skipped",
			json: `{"funding_rounds":[
				{"investments":[
					{"financial_org":{"name":"Sequoia"}},
					{"financial_org":null,"person":{"first_name":"Ron"}},
					{"financial_org":{"name":"Accel"}}
				]},
				{"investments":[
					{"financial_org":{"name":"Accel"}},
					{"financial_org":{"name":"Benchmark"}}
				]}
			]}`,
			want: []string{"Sequoia", "Accel", "Benchmark"},
		},
		{
			name: "no funding rounds",
			json: `{"funding_rounds":[]}`,
			want: []string{},
		},
		{
			name:    "funding_rounds missing",
			json:    `{"name":"x"}`,
			wantErr: true,
		},
		{
			name:    "funding_rounds null",
			json:    `{"funding_rounds":null}`,
			wantErr: true,
		},
		{
			name:    "investments missing",
			json:    `{"funding_rounds":[{"round_code":"a"}]}`,
			wantErr: true,
		},
		{
			name:    "financial_org key missing",
			json:    `{"funding_rounds":[{"investments":[{"person":null}]}]}`,
			wantErr: true,
		},
		{
			name:    "financial_org without name",
			json:    `{"funding_rounds":[{"investments":[{"financial_org":{"permalink":"x"}}]}]}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := companyInvestors(gjson.Parse(tt.json))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedResponse)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListInvestorPortfolio(t *testing.T) {
	cb, mock := newTestAPI(t)
	mock.SetResponse("/v1/financial-organization/acme-ventures.js", testutil.NewJSONResponse(`{
		"name": "Acme Ventures",
		"investments": [
			{"funding_round": {"round_code": "a", "company": {"name": "A", "permalink": "a"}}},
			{"funding_round": {"round_code": "a", "company": {"name": "B", "permalink": "b"}}},
			{"funding_round": {"round_code": "b", "company": {"name": "A", "permalink": "a"}}}
		]
	}`))

	portfolio, err := cb.ListInvestorPortfolio(context.Background(), "acme-ventures")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "A"}, portfolio)
}

func TestInvestorPortfolio_Malformed(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"investments missing", `{"name":"x"}`},
		{"funding_round missing", `{"investments":[{"foo":1}]}`},
		{"company null", `{"investments":[{"funding_round":{"company":null}}]}`},
		{"name not a string", `{"investments":[{"funding_round":{"company":{"name":7}}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := investorPortfolio(gjson.Parse(tt.json))
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestAggregationPropagatesFetchError(t *testing.T) {
	cb, _ := newTestAPI(t)

	investors, err := cb.ListCompanyInvestors(context.Background(), "missing")
	assert.Nil(t, investors)
	assert.True(t, client.IsNotFound(err))

	portfolio, err := cb.ListInvestorPortfolio(context.Background(), "missing")
	assert.Nil(t, portfolio)
	assert.True(t, client.IsNotFound(err))
}
