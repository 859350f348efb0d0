package operation

import (
	"github.com/jarrod-lowe/cnh-agent-actions/internal/payload"
	"github.com/jarrod-lowe/cnh-agent-actions/internal/validate"
)

// onboardingRules are skipped by IssuePaymentGuide when a flow_id is present,
// since ConfirmIdentity already checked them
var onboardingRules = []validate.Rule{
	validate.RequiredFormat("cpf", validate.CPF),
	validate.Required("nome_condutor"),
	validate.RequiredFormat("data_nascimento", validate.Date),
	validate.Required("nome_mae"),
}

var confirmRules = onboardingRules

var guideProfileRules = []validate.Rule{
	validate.Required("codigo_taxa"),
	validate.Required("codigo_servico"),
	validate.Required("numero_cnh"),
}

var guideContactRules = []validate.Rule{
	validate.Required("codigo_municipio_condutor"),
	validate.Required("ddd_celular"),
	validate.Required("numero_celular"),
	validate.Required("email"),
	validate.Required("numero_ip_micro"),
}

var statusRules = []validate.Rule{
	validate.RequiredFormat("cpf", validate.CPF),
	validate.RequiredFormat("data_nascimento", validate.Date),
}

// FlowIDField carries the continuation identifier between operations
const FlowIDField = "flow_id"

// HasFlowID reports whether p carries a continuation identifier. Falsy values
// such as 0, false or an empty list do not count.
func HasFlowID(p payload.Payload) bool {
	return p.Present(FlowIDField)
}

// ValidateConfirmIdentity checks the onboarding fields
func ValidateConfirmIdentity(p payload.Payload) error {
	return validate.Apply(p, confirmRules)
}

// ValidateIssuePaymentGuide checks the guide fields. Onboarding and profile
// fields are only required when no flow_id continues a confirmed flow.
func ValidateIssuePaymentGuide(p payload.Payload) error {
	if !HasFlowID(p) {
		if err := validate.Apply(p, onboardingRules); err != nil {
			return err
		}
		if err := validate.Apply(p, guideProfileRules); err != nil {
			return err
		}
	}
	return validate.Apply(p, guideContactRules)
}

// ValidateFetchStatus checks the status lookup fields
func ValidateFetchStatus(p payload.Payload) error {
	return validate.Apply(p, statusRules)
}

// HandleConfirmIdentity validates p and returns the citizen profile under a new flow
func HandleConfirmIdentity(p payload.Payload, flowID string) (*IdentityResult, error) {
	if err := ValidateConfirmIdentity(p); err != nil {
		return nil, err
	}

	cpf, _ := p.Text("cpf")
	return &IdentityResult{
		FlowID: flowID,
		Profile: DriverProfile{
			ReturnStatus:                ReturnStatus{CodigoRetorno: 0, MensagemRetorno: "OK"},
			CPF:                         cpf,
			NumeroCNH:                   "12345678900",
			NumeroPGU:                   "99887766",
			NumeroIdentidade:            "MG1234567",
			OrgaoExpedidorIdentidade:    "SSP",
			UFIdentidade:                "MG",
			EnderecoCondutor:            "Av. Afonso Pena",
			NumeroEnderecoCondutor:      "1000",
			ComplementoEnderecoCondutor: "Sala 101",
			BairroEnderecoCondutor:      "Centro",
			CodigoMunicipioCondutor:     4123,
			NomeMunicipioCondutor:       "BELO HORIZONTE",
			SiglaUFMunicipioCondutor:    "MG",
			NumeroCEPEnderecoCondutor:   "30130008",
			DataPrimeiraHabilitacao:     "2010-06-15",
			DataValidadeExame:           "2027-05-23",
			CodigoServico:               123,
			CodigoTaxa:                  25,
			FlagEscolheEntrega:          1,
			FlagTipoAutorizacao:         "CNH",
			DDDCelular:                  31,
			NumeroCelular:               999999999,
			Email:                       "condutor@example.com",
		},
	}, nil
}

// defaultCPF is billed when the caller continues a flow without a cpf
const defaultCPF = "00000000000"

// HandleIssuePaymentGuide validates p and returns the payment guide for the
// reissuance fee. Only cpf_contribuinte comes from p; the rest is the fixed DAE.
func HandleIssuePaymentGuide(p payload.Payload) (*GuideResult, error) {
	if err := ValidateIssuePaymentGuide(p); err != nil {
		return nil, err
	}

	return &GuideResult{
		Request: ReturnStatus{CodigoRetorno: 0, MensagemRetorno: "OK"},
		Guide: PaymentGuide{
			CodigoErro:                    0,
			MensagemErro:                  "",
			CodigoTipoContribuinte:        "04",
			CodigoMunicipioIBGE:           "062",
			DescricaoMunicipio:            "BELO HORIZONTE",
			MesAnoDAE:                     "12/2024",
			DataVencimento:                "31/12/2024",
			LinhaDigitavel:                "85610000001 2 26710213241 7 23112252400 3 02194270789 0",
			CodigoBarras:                  "856100000012267102132417231122524003021942707890",
			NossoNumero:                   "2524000219427",
			NomeContribuinte:              "CONDUTOR TESTE",
			ValorTaxa:                     "126,71",
			QuantidadeTaxa:                1,
			DataEmissao:                   "20/12/2024",
			CPFContribuinte:               p.TextOr("cpf", defaultCPF),
			NumeroIdentificaoContribuinte: "12345678900",
			SiglaUFOrigemContribuinte:     "MG",
			CampoMensagem1:                "EXPEDICAO DA 2a VIA DA HABILITACAO",
			CampoMensagem2:                "NUM. CNH: 12345678900",
			CampoMensagem3:                "Solicitação Segunda Via de CNH / PPD",
			CampoMensagem5:                "- A segunda via da CNH sera emitida apos a confirmacao de pagamento",
			CampoMensagem6:                "do DAE e enviada para o endereco do condutor atraves do correio.",
			CampoMensagem7:                "Acompanhe a sua solicitacao atraves do site www.detran.mg.gov.br",
			CampoMensagem13:               "Sr. Caixa,",
			CampoMensagem14:               "Este documento deve ser recebido exclusivamente pela",
			CampoMensagem15:               "leitura do codigo de barra ou linha digitavel",
			CampoMensagem17:               "Data Emissao: 20/12/2024",
			CodigoTaxa:                    25,
			CodigoMunicipio:               "4123",
		},
		CodigoBarras: "iVBORw0KGgoAAAANSUhEUgAAAAEAAAAB...",
	}, nil
}

// HandleFetchStatus validates p and returns the delivery status of the request
func HandleFetchStatus(p payload.Payload) (*StatusResult, error) {
	if err := ValidateFetchStatus(p); err != nil {
		return nil, err
	}

	cpf, _ := p.Text("cpf")
	return &StatusResult{
		CPF:                      cpf,
		NumeroRenach:             "MG-123456789",
		NomeCondutor:             "CONDUTOR TESTE",
		NumeroFormularioRenach:   "FORM-0001",
		CodigoEtapa:              4,
		DescricaoEtapa:           "Emissão concluída",
		Prazo:                    0,
		TituloEntrega:            "Postado nos Correios",
		DataEntregaLote:          "2025-09-18",
		TituloHoraEntrega:        "Até 18h",
		HoraEntregaLote:          "18:00:00",
		DataHoraStatus:           "2025-09-18T12:10:00Z",
		TextoARCorreio:           "AR: 123456789BR",
		NumeroARCorreio:          "123456789BR",
		DataARCorreio:            "2025-09-18",
		SituacaoCNH:              "Emitida",
		DescricaoSituacaoEntrega: "Em trânsito",
		CodigoRetornoBinco:       0,
		DescricaoRetornoBinco:    "Sem restrições",
		DataRetornoBinco:         "2024-12-19",
		DescricaoSituacaoCNH:     "Regular",
		QuantidadeMotivoRejeicao: 0,
		CodigoRejeicao:           []string{},
		MotivoRejeicao:           []string{},
		DescricaoAcao:            "Acompanhar entrega pelo AR",
	}, nil
}
