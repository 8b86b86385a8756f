package ipg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/kevin07696/ipg-gateway/internal/adapters/ports"
	"github.com/shopspring/decimal"
)

const (
	nsSOAPEnvelope = "http://schemas.xmlsoap.org/soap/envelope/"
	nsIPGAPI       = "http://ipg-online.com/ipgapi/schemas/ipgapi"
	nsV1           = "http://ipg-online.com/ipgapi/schemas/v1"

	// orderOperation is the single operation of the order service
	orderOperation = "IPGApiOrder"
)

// Outbound envelope. Element names carry the prefixes declared on the
// envelope; order follows the v1 schema sequence.
type requestEnvelope struct {
	XMLName xml.Name    `xml:"SOAP-ENV:Envelope"`
	SOAPNS  string      `xml:"xmlns:SOAP-ENV,attr"`
	IPGNS   string      `xml:"xmlns:ipgapi,attr"`
	V1NS    string      `xml:"xmlns:v1,attr"`
	Header  struct{}    `xml:"SOAP-ENV:Header"`
	Body    requestBody `xml:"SOAP-ENV:Body"`
}

type requestBody struct {
	Order orderRequest `xml:"ipgapi:IPGApiOrderRequest"`
}

type orderRequest struct {
	Transaction wireTransaction `xml:"v1:Transaction"`
}

type wireTransaction struct {
	CreditCardTxType   wireTxType    `xml:"v1:CreditCardTxType"`
	CreditCardData     *wireCardData `xml:"v1:CreditCardData,omitempty"`
	CardFunction       string        `xml:"v1:cardFunction,omitempty"`
	Payment            wirePayment   `xml:"v1:Payment"`
	TransactionDetails *wireDetails  `xml:"v1:TransactionDetails,omitempty"`
	Billing            *wireAddress  `xml:"v1:Billing,omitempty"`
	Shipping           *wireShipping `xml:"v1:Shipping,omitempty"`
}

type wireTxType struct {
	Type string `xml:"v1:Type"`
}

type wireCardData struct {
	CardNumber    string `xml:"v1:CardNumber"`
	ExpMonth      string `xml:"v1:ExpMonth"`
	ExpYear       string `xml:"v1:ExpYear"`
	CardCodeValue string `xml:"v1:CardCodeValue,omitempty"`
}

type wirePayment struct {
	HostedDataID         string      `xml:"v1:HostedDataID,omitempty"`
	NumberOfInstallments int         `xml:"v1:numberOfInstallments"`
	InstallmentsInterest string      `xml:"v1:installmentsInterest"`
	SubTotal             *wireAmount `xml:"v1:SubTotal,omitempty"`
	DeliveryAmount       wireAmount  `xml:"v1:DeliveryAmount"`
	ChargeTotal          wireAmount  `xml:"v1:ChargeTotal"`
	Currency             string      `xml:"v1:Currency"`
}

type wireDetails struct {
	OrderID               string `xml:"v1:OrderId,omitempty"`
	MerchantTransactionID string `xml:"v1:MerchantTransactionId,omitempty"`
	IP                    string `xml:"v1:Ip,omitempty"`
}

type wireAddress struct {
	Name     string `xml:"v1:Name,omitempty"`
	Address1 string `xml:"v1:Address1,omitempty"`
	Address2 string `xml:"v1:Address2,omitempty"`
	City     string `xml:"v1:City,omitempty"`
	State    string `xml:"v1:State,omitempty"`
	Zip      string `xml:"v1:Zip,omitempty"`
	Country  string `xml:"v1:Country,omitempty"`
	Phone    string `xml:"v1:Phone,omitempty"`
	Email    string `xml:"v1:Email,omitempty"`
}

type wireShipping struct {
	Name     string `xml:"v1:Name,omitempty"`
	Address1 string `xml:"v1:Address1,omitempty"`
	Address2 string `xml:"v1:Address2,omitempty"`
	City     string `xml:"v1:City,omitempty"`
	State    string `xml:"v1:State,omitempty"`
	Zip      string `xml:"v1:Zip,omitempty"`
	Country  string `xml:"v1:Country,omitempty"`
	Phone    string `xml:"v1:Phone,omitempty"`
}

// wireAmount is a decimal sent as an IEEE-754 double, which is what the
// order service accepts. Formatting never uses exponent notation.
type wireAmount float64

func newWireAmount(d decimal.Decimal) wireAmount {
	return wireAmount(d.InexactFloat64())
}

func (a wireAmount) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	return e.EncodeElement(strconv.FormatFloat(float64(a), 'f', -1, 64), start)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// toWire applies the document's field-to-wire mapping
func toWire(tx *ports.Transaction) wireTransaction {
	wt := wireTransaction{
		CreditCardTxType: wireTxType{Type: string(tx.Type)},
		CardFunction:     string(tx.CardFunction),
		Payment: wirePayment{
			HostedDataID:         tx.Payment.HostedDataID,
			NumberOfInstallments: tx.Payment.NumberOfInstallments,
			InstallmentsInterest: yesNo(tx.Payment.InstallmentsInterest),
			DeliveryAmount:       newWireAmount(tx.Payment.DeliveryAmount),
			ChargeTotal:          newWireAmount(tx.Payment.ChargeTotal),
			Currency:             tx.Payment.Currency,
		},
	}

	if wt.Payment.NumberOfInstallments < 1 {
		wt.Payment.NumberOfInstallments = 1
	}

	if st := tx.Payment.SubTotal; st != nil && !st.IsZero() {
		amount := newWireAmount(*st)
		wt.Payment.SubTotal = &amount
	}

	if cd := tx.CreditCardData; cd != nil {
		wt.CreditCardData = &wireCardData{
			CardNumber:    cd.CardNumber,
			ExpMonth:      cd.ExpMonth,
			ExpYear:       cd.ExpYear,
			CardCodeValue: cd.CardCodeValue,
		}
	}

	d := tx.Details
	if d.OrderID != "" || d.MerchantTransactionID != "" || d.IP != "" {
		wt.TransactionDetails = &wireDetails{
			OrderID:               d.OrderID,
			MerchantTransactionID: d.MerchantTransactionID,
			IP:                    d.IP,
		}
	}

	if b := tx.Billing; b != nil {
		wt.Billing = &wireAddress{
			Name:     b.Name,
			Address1: b.Address1,
			Address2: b.Address2,
			City:     b.City,
			State:    b.State,
			Zip:      b.Zip,
			Country:  b.Country,
			Phone:    b.Phone,
			Email:    b.Email,
		}
	}

	if s := tx.Shipping; s != nil {
		wt.Shipping = &wireShipping{
			Name:     s.Name,
			Address1: s.Address1,
			Address2: s.Address2,
			City:     s.City,
			State:    s.State,
			Zip:      s.Zip,
			Country:  s.Country,
			Phone:    s.Phone,
		}
	}

	return wt
}

// marshalOrderRequest renders a transaction as an IPGApiOrderRequest envelope
func marshalOrderRequest(tx *ports.Transaction) ([]byte, error) {
	env := requestEnvelope{
		SOAPNS: nsSOAPEnvelope,
		IPGNS:  nsIPGAPI,
		V1NS:   nsV1,
		Body: requestBody{
			Order: orderRequest{Transaction: toWire(tx)},
		},
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(env); err != nil {
		return nil, fmt.Errorf("encode order request: %w", err)
	}
	return buf.Bytes(), nil
}

// Inbound envelope. Matching is by local name so any prefix the service
// chooses is accepted.
type responseEnvelope struct {
	XMLName xml.Name     `xml:"Envelope"`
	Body    responseBody `xml:"Body"`
}

type responseBody struct {
	Fault         *soapFault `xml:"Fault"`
	OrderResponse *element   `xml:"IPGApiOrderResponse"`
}

type soapFault struct {
	Code   string      `xml:"faultcode"`
	String string      `xml:"faultstring"`
	Detail faultDetail `xml:"detail"`
}

type faultDetail struct {
	OrderResponse *element `xml:"IPGApiOrderResponse"`
	Text          string   `xml:",chardata"`
}

// element is a generic XML node used to flatten response documents
type element struct {
	XMLName  xml.Name
	Value    string    `xml:",chardata"`
	Children []element `xml:",any"`
}

// flatten collects leaf values keyed by local name; the first occurrence wins
func (e *element) flatten() map[string]string {
	fields := make(map[string]string)
	var walk func(nodes []element)
	walk = func(nodes []element) {
		for i := range nodes {
			n := &nodes[i]
			if len(n.Children) > 0 {
				walk(n.Children)
				continue
			}
			if _, seen := fields[n.XMLName.Local]; !seen {
				fields[n.XMLName.Local] = strings.TrimSpace(n.Value)
			}
		}
	}
	walk(e.Children)
	return fields
}

// decodeOrderResponse demultiplexes a response body into a result or a Fault.
// A body that is not a SOAP envelope yields errNotSOAP.
func decodeOrderResponse(body []byte) (*ports.OrderResult, error) {
	var env responseEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", errNotSOAP, err)
	}

	if f := env.Body.Fault; f != nil {
		return nil, f.toFault()
	}

	if env.Body.OrderResponse == nil {
		return nil, fmt.Errorf("%w: no IPGApiOrderResponse in body", errNotSOAP)
	}

	return &ports.OrderResult{Fields: env.Body.OrderResponse.flatten()}, nil
}

func (f *soapFault) toFault() *Fault {
	raw := map[string]string{}
	if f.Detail.OrderResponse != nil {
		raw = f.Detail.OrderResponse.flatten()
	}

	fault := &Fault{
		Code:    raw["ProcessorResponseCode"],
		Message: raw["ProcessorResponseMessage"],
		Raw:     raw,
	}

	if fault.Message == "" {
		fault.Message = raw["ErrorMessage"]
	}
	if fault.Message == "" {
		fault.Message = strings.TrimSpace(f.Detail.Text)
	}
	if fault.Message == "" {
		fault.Message = strings.TrimSpace(f.String)
	}
	if fault.Code == "" {
		fault.Code = strings.TrimSpace(f.Code)
	}

	return fault
}
