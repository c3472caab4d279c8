package gateway

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testSecret = "secret"

func sampleParams() map[string]string {
	return map[string]string{
		"vnp_TxnRef":    "abc123",
		"vnp_Amount":    "1000000",
		"vnp_OrderInfo": "Top up uid:7",
	}
}

func TestCanonicalize(t *testing.T) {
	p := sampleParams()
	p["vnp_BankCode"] = ""
	p[ParamSecureHash] = "deadbeef"
	p[ParamSecureHashType] = "HmacSHA512"

	assert.Equal(t, "vnp_Amount=1000000&vnp_OrderInfo=Top+up+uid%3A7&vnp_TxnRef=abc123", Canonicalize(p))
}

func TestSign_KnownVector(t *testing.T) {
	want := "7fcaa5f573223b254fb98d13af4ecd526a84a1d3ba28d099506bc6ec6130063a8d972af585aa0ef8df6f7e10152f263739bb5b8cb3855238da312e4905a093dd"
	assert.Equal(t, want, Sign(testSecret, sampleParams()))
}

func TestVerify(t *testing.T) {
	p := sampleParams()
	p[ParamSecureHash] = Sign(testSecret, p)
	assert.True(t, Verify(testSecret, p))

	t.Run("uppercase signature", func(t *testing.T) {
		q := sampleParams()
		q[ParamSecureHash] = strings.ToUpper(p[ParamSecureHash])
		assert.True(t, Verify(testSecret, q))
	})

	t.Run("wrong secret", func(t *testing.T) {
		assert.False(t, Verify("other", p))
	})

	t.Run("empty secret", func(t *testing.T) {
		q := sampleParams()
		q[ParamSecureHash] = Sign("", q)
		assert.False(t, Verify("", q))
	})

	t.Run("missing signature", func(t *testing.T) {
		assert.False(t, Verify(testSecret, sampleParams()))
	})
}

func TestVerify_RejectsAnyTamperedParameter(t *testing.T) {
	signed := sampleParams()
	signed["vnp_ResponseCode"] = "00"
	signed["vnp_TransactionStatus"] = "00"
	signed[ParamSecureHash] = Sign(testSecret, signed)

	for key := range signed {
		if key == ParamSecureHash {
			continue
		}
		t.Run(key, func(t *testing.T) {
			tampered := make(map[string]string, len(signed))
			for k, v := range signed {
				tampered[k] = v
			}
			tampered[key] += "1"
			assert.False(t, Verify(testSecret, tampered))
		})
	}

	t.Run("added parameter", func(t *testing.T) {
		tampered := make(map[string]string, len(signed)+1)
		for k, v := range signed {
			tampered[k] = v
		}
		tampered["vnp_BankCode"] = "NCB"
		assert.False(t, Verify(testSecret, tampered))
	})
}

func TestFlatten(t *testing.T) {
	values := url.Values{"a": {"1", "2"}, "b": {"x"}, "c": {}}

	assert.Equal(t, map[string]string{"a": "1", "b": "x"}, Flatten(values))
}
