package envelope

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/jarrod-lowe/cnh-agent-actions/internal/operation"
	"github.com/jarrod-lowe/cnh-agent-actions/internal/payload"
	"github.com/qri-io/jsonpointer"
)

// Session attributes set on error envelopes
const (
	AttrLastError     = "last_error"
	AttrLastErrorCode = "last_error_code"
)

// sessionPointers maps each operation's session attributes to JSON Pointers
// into its success body
var sessionPointers = map[operation.Operation]map[string]string{
	operation.ConfirmIdentity: {
		"flow_id":                     "/flow_id",
		"cpf":                         "/retornoNSDGXS02/cpf",
		"codigo_taxa":                 "/retornoNSDGXS02/codigo_taxa",
		"codigo_servico":              "/retornoNSDGXS02/codigo_servico",
		"numero_cnh":                  "/retornoNSDGXS02/numero_cnh",
		"ddd_celular":                 "/retornoNSDGXS02/ddd_celular",
		"numero_celular":              "/retornoNSDGXS02/numero_celular",
		"email":                       "/retornoNSDGXS02/email",
		"codigo_municipio_condutor":   "/retornoNSDGXS02/codigo_municipio_condutor",
		"nome_municipio_condutor":     "/retornoNSDGXS02/nome_municipio_condutor",
		"sigla_uf_municipio_condutor": "/retornoNSDGXS02/sigla_uf_municipio_condutor",
	},
	operation.IssuePaymentGuide: {
		"dae_linha_digitavel":  "/retornoNsdgx414/linha_digitavel",
		"dae_codigo_barras_44": "/retornoNsdgx414/codigo_barras",
		"dae_valor":            "/retornoNsdgx414/valor_taxa",
		"dae_vencimento":       "/retornoNsdgx414/data_vencimento",
		"dae_municipio_desc":   "/retornoNsdgx414/descricao_municipio",
		"dae_municipio_ibge":   "/retornoNsdgx414/codigo_municipio_ibge",
		"dae_mes_ano":          "/retornoNsdgx414/mes_ano_dae",
	},
	operation.FetchStatus: {
		"status_descricao_etapa": "/descricao_etapa",
		"status_situacao_cnh":    "/situacao_cnh",
		"status_data_hora":       "/data_hora_status",
	},
}

// SessionAttributes promotes the operation's attributes out of a successful
// JSON body. Non-200 responses, non-JSON content and unknown operations yield an
// empty mapping. Absent and null values are dropped; the rest are stringified.
func SessionAttributes(op operation.Operation, statusCode int, contentType, body string) map[string]string {
	attrs := map[string]string{}
	if !strings.HasPrefix(contentType, "application/json") || statusCode != http.StatusOK {
		return attrs
	}
	pointers, ok := sessionPointers[op]
	if !ok {
		return attrs
	}

	data, ok := decodeJSON([]byte(body))
	if !ok {
		return attrs
	}

	for attr, path := range pointers {
		ptr, err := jsonpointer.Parse(path)
		if err != nil {
			continue
		}
		value, err := ptr.Eval(data)
		if err != nil || value == nil {
			continue
		}
		attrs[attr] = payload.TextOf(value)
	}
	return attrs
}

// ErrorSessionAttributes records the last error for conversational continuity
func ErrorSessionAttributes(statusCode int, message string) map[string]string {
	return map[string]string{
		AttrLastError:     message,
		AttrLastErrorCode: strconv.Itoa(statusCode),
	}
}

// BodyText re-serializes a JSON body compactly, or returns the raw text when the
// body is not JSON
func BodyText(raw []byte) string {
	data, ok := decodeJSON(raw)
	if !ok {
		return string(raw)
	}
	text, err := Marshal(data)
	if err != nil {
		return string(raw)
	}
	return text
}

func decodeJSON(raw []byte) (any, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var data any
	if err := dec.Decode(&data); err != nil {
		return nil, false
	}
	if dec.More() {
		return nil, false
	}
	return data, true
}
