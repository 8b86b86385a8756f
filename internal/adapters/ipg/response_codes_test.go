package ipg

import (
	"context"
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/kevin07696/ipg-gateway/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetResponseCode(t *testing.T) {
	tests := []struct {
		code          string
		wantApproved  bool
		wantRetriable bool
		wantCategory  pkgerrors.ErrorCategory
	}{
		{code: "00", wantApproved: true, wantCategory: pkgerrors.CategoryApproved},
		{code: "05", wantCategory: pkgerrors.CategoryDeclined},
		{code: "51", wantRetriable: true, wantCategory: pkgerrors.CategoryInsufficientFunds},
		{code: "54", wantCategory: pkgerrors.CategoryExpiredCard},
		{code: "59", wantCategory: pkgerrors.CategoryFraud},
		{code: "96", wantRetriable: true, wantCategory: pkgerrors.CategorySystemError},
		{code: "ZZ", wantCategory: pkgerrors.CategoryDeclined},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			info := GetResponseCode(tt.code)
			assert.Equal(t, tt.code, info.Code)
			assert.Equal(t, tt.wantApproved, info.IsApproved)
			assert.Equal(t, tt.wantRetriable, info.IsRetriable)
			assert.Equal(t, tt.wantCategory, info.Category)
			assert.NotEmpty(t, info.UserMessage)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantCode      string
		wantCategory  pkgerrors.ErrorCategory
		wantRetriable bool
	}{
		{
			name:         "declined fault",
			err:          &Fault{Code: "05", Message: "Do not honor"},
			wantCode:     "05",
			wantCategory: pkgerrors.CategoryDeclined,
		},
		{
			name:         "provisioning",
			err:          &ProvisioningError{Err: errors.New("disk full")},
			wantCode:     "PROVISIONING",
			wantCategory: pkgerrors.CategoryConfiguration,
		},
		{
			name:          "timeout",
			err:           newConnectivityError("submit order", context.DeadlineExceeded),
			wantCode:      "TIMEOUT",
			wantCategory:  pkgerrors.CategoryTimeout,
			wantRetriable: true,
		},
		{
			name:          "server error",
			err:           &ConnectivityError{Op: "submit order", StatusCode: 503},
			wantCode:      "CONNECTIVITY",
			wantCategory:  pkgerrors.CategoryNetworkError,
			wantRetriable: true,
		},
		{
			name:         "unauthorized",
			err:          &ConnectivityError{Op: "load service description", StatusCode: 401},
			wantCode:     "CONNECTIVITY",
			wantCategory: pkgerrors.CategoryNetworkError,
		},
		{
			name:         "unknown",
			err:          errors.New("boom"),
			wantCode:     "SYSTEM",
			wantCategory: pkgerrors.CategorySystemError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pe := Classify(fmt.Errorf("invoke: %w", tt.err))
			require.NotNil(t, pe)
			assert.Equal(t, tt.wantCode, pe.Code)
			assert.Equal(t, tt.wantCategory, pe.Category)
			assert.Equal(t, tt.wantRetriable, pe.IsRetriable)
			assert.ErrorIs(t, pe, tt.err)
		})
	}

	assert.Nil(t, Classify(nil))
}

func TestClassify_FaultKeepsGatewayMessage(t *testing.T) {
	pe := Classify(&Fault{Code: "05", Message: "Do not honor"})
	assert.Equal(t, "Do not honor", pe.GatewayMessage)
	assert.Equal(t, "05: Transaction declined by the card issuer. (gateway: Do not honor)", pe.Error())
}
