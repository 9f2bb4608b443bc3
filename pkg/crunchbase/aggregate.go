package crunchbase

import (
	"context"

	"github.com/tidwall/gjson"
)

// ListCompanyInvestors returns the names of the financial organizations
// that invested in the company, de-duplicated in first-seen order.
// Investments without a financial organization (people, companies) are
// skipped. Data missing the expected structure yields ErrMalformedResponse.
func (c *CrunchBase) ListCompanyInvestors(ctx context.Context, name string) ([]string, error) {
	company, err := c.Company(ctx, name)
	if err != nil {
		return nil, err
	}
	return companyInvestors(company)
}

func companyInvestors(company gjson.Result) ([]string, error) {
	rounds := company.Get("funding_rounds")
	if !rounds.IsArray() {
		return nil, malformed("funding_rounds is not a list")
	}

	investors := []string{}
	seen := make(map[string]struct{})

	for i, round := range rounds.Array() {
		investments := round.Get("investments")
		if !investments.IsArray() {
			return nil, malformed("funding round %d: investments is not a list", i)
		}

		for j, investment := range investments.Array() {
			org := investment.Get("financial_org")
			if !org.Exists() {
				return nil, malformed("funding round %d, investment %d: financial_org missing", i, j)
			}
			if org.Type == gjson.Null {
				continue
			}

			orgName := org.Get("name")
			if orgName.Type != gjson.String {
				return nil, malformed("funding round %d, investment %d: financial_org.name is not a string", i, j)
			}

			n := orgName.String()
			if _, dup := seen[n]; dup {
				continue
			}
			seen[n] = struct{}{}
			investors = append(investors, n)
		}
	}

	return investors, nil
}

// ListInvestorPortfolio returns the names of the companies a financial
// organization invested in, one per investment, in source order.
func (c *CrunchBase) ListInvestorPortfolio(ctx context.Context, orgName string) ([]string, error) {
	org, err := c.FinancialOrganization(ctx, orgName)
	if err != nil {
		return nil, err
	}
	return investorPortfolio(org)
}

func investorPortfolio(org gjson.Result) ([]string, error) {
	investments := org.Get("investments")
	if !investments.IsArray() {
		return nil, malformed("investments is not a list")
	}

	portfolio := []string{}
	for i, investment := range investments.Array() {
		companyName := investment.Get("funding_round.company.name")
		if companyName.Type != gjson.String {
			return nil, malformed("investment %d: funding_round.company.name is not a string", i)
		}
		portfolio = append(portfolio, companyName.String())
	}

	return portfolio, nil
}
