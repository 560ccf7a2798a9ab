package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Dan9191/fee-reminder/internal/models"
	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Client reads the account population from the registry's XML export.
//
// The export looks like:
//
//	<Accounts>
//	  <Account id="REG-001" status="active">
//	    <FullName>..</FullName><Mobile>..</Mobile><Course>..</Course>
//	    <TotalFees>1000</TotalFees><PaidFees>200</PaidFees><OldPaidFees>0</OldPaidFees>
//	    <AdmissionDate>2024-01-15</AdmissionDate>
//	    <Installments><Installment date="15/02/2024" amount="100"/></Installments>
//	  </Account>
//	</Accounts>
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewClient initializes a new registry client
func NewClient(url string, log *logrus.Logger) *Client {
	return &Client{
		url: url,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// fetch downloads the raw export
func (c *Client) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debugf("Registry export: %d bytes", len(body))
	return body, nil
}

// ListAccounts fetches and parses the whole export. A transport or document error
// fails the call; a single unreadable account is logged and left out.
func (c *Client) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	body, err := c.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch registry export: %w", err)
	}
	return c.parse(body)
}

func (c *Client) parse(rawBody []byte) ([]*models.Account, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	root := doc.SelectElement("Accounts")
	if root == nil {
		return nil, fmt.Errorf("no Accounts element found in XML")
	}

	accounts := make([]*models.Account, 0)
	for _, el := range root.SelectElements("Account") {
		account, err := parseAccount(el)
		if err != nil {
			c.log.WithFields(logrus.Fields{
				"account_id": el.SelectAttrValue("id", ""),
				"error":      err,
			}).Warn("Skipping unreadable registry account")
			continue
		}
		accounts = append(accounts, account)
	}

	c.log.Infof("Loaded %d accounts from registry", len(accounts))
	return accounts, nil
}

func parseAccount(el *etree.Element) (*models.Account, error) {
	account := &models.Account{
		ID:            strings.TrimSpace(el.SelectAttrValue("id", "")),
		Status:        models.AccountStatus(el.SelectAttrValue("status", string(models.AccountStatusActive))),
		FullName:      childText(el, "FullName"),
		Mobile:        childText(el, "Mobile"),
		Course:        childText(el, "Course"),
		AdmissionDate: childText(el, "AdmissionDate"),
	}
	if account.ID == "" {
		return nil, fmt.Errorf("missing id attribute")
	}

	var err error
	if account.TotalFees, err = amount(childText(el, "TotalFees")); err != nil {
		return nil, fmt.Errorf("total fees: %w", err)
	}
	if account.PaidFees, err = amount(childText(el, "PaidFees")); err != nil {
		return nil, fmt.Errorf("paid fees: %w", err)
	}
	if account.OldPaidFees, err = amount(childText(el, "OldPaidFees")); err != nil {
		return nil, fmt.Errorf("old paid fees: %w", err)
	}

	for _, inst := range el.FindElements("./Installments/Installment") {
		value, err := amount(inst.SelectAttrValue("amount", ""))
		if err != nil {
			return nil, fmt.Errorf("installment amount: %w", err)
		}
		account.Installments = append(account.Installments, models.Installment{
			Date:   inst.SelectAttrValue("date", ""),
			Amount: value,
		})
	}
	return account, nil
}

func childText(el *etree.Element, tag string) string {
	child := el.SelectElement(tag)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.Text())
}

// amount parses a fee value; missing values count as zero
func amount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
