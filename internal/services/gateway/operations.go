package gateway

import (
	"github.com/kevin07696/ipg-gateway/internal/adapters/ports"
	"github.com/kevin07696/ipg-gateway/internal/domain"
)

// Operation maps a platform operation to the IPG transaction type it sends
// and the transaction kind it reports
type Operation struct {
	Name string
	Type ports.TransactionType
	Kind domain.TransactionKind
}

var (
	OperationAuthorize = Operation{Name: "authorize", Type: ports.TransactionTypePreAuth, Kind: domain.KindAuth}
	OperationCapture   = Operation{Name: "capture", Type: ports.TransactionTypeSale, Kind: domain.KindCapture}
	OperationConfirm   = Operation{Name: "confirm", Type: ports.TransactionTypePostAuth, Kind: domain.KindCapture}
	OperationVoid      = Operation{Name: "void", Type: ports.TransactionTypeVoid, Kind: domain.KindVoid}
	OperationRefund    = Operation{Name: "refund", Type: ports.TransactionTypeReturn, Kind: domain.KindRefund}
)

// Operations lists every operation in dispatch order
var Operations = []Operation{
	OperationAuthorize,
	OperationCapture,
	OperationConfirm,
	OperationVoid,
	OperationRefund,
}

// FollowUp reports whether the operation refers to an earlier order
func (o Operation) FollowUp() bool {
	return o.Type.RequiresOrderID()
}
