package operation

// Field names of the records below are part of the wire contract with the agent
// and the issuing systems and must not change.

// ReturnStatus is the return block shared by the issuing system's replies
type ReturnStatus struct {
	CodigoRetorno   int    `json:"codigo_retorno"`
	MensagemRetorno string `json:"mensagem_retorno"`
}

// IdentityResult is returned by ConfirmIdentity
type IdentityResult struct {
	FlowID  string        `json:"flow_id"`
	Profile DriverProfile `json:"retornoNSDGXS02"`
}

// DriverProfile is the citizen record returned when identity is confirmed
type DriverProfile struct {
	ReturnStatus
	CPF                         string `json:"cpf"`
	NumeroCNH                   string `json:"numero_cnh"`
	NumeroPGU                   string `json:"numero_pgu"`
	NumeroIdentidade            string `json:"numero_identidade"`
	OrgaoExpedidorIdentidade    string `json:"orgao_expedidor_identidade"`
	UFIdentidade                string `json:"uf_identidade"`
	EnderecoCondutor            string `json:"endereco_condutor"`
	NumeroEnderecoCondutor      string `json:"numero_endereco_condutor"`
	ComplementoEnderecoCondutor string `json:"complemento_endereco_condutor"`
	BairroEnderecoCondutor      string `json:"bairro_endereco_condutor"`
	CodigoMunicipioCondutor     int    `json:"codigo_municipio_condutor"`
	NomeMunicipioCondutor       string `json:"nome_municipio_condutor"`
	SiglaUFMunicipioCondutor    string `json:"sigla_uf_municipio_condutor"`
	NumeroCEPEnderecoCondutor   string `json:"numero_cep_endereco_condutor"`
	DataPrimeiraHabilitacao     string `json:"data_primeira_habilitacao"`
	DataValidadeExame           string `json:"data_validade_exame"`
	CodigoServico               int    `json:"codigo_servico"`
	CodigoTaxa                  int    `json:"codigo_taxa"`
	FlagEscolheEntrega          int    `json:"flag_escolhe_entrega"`
	FlagTipoAutorizacao         string `json:"flag_tipo_autorizacao"`
	DDDCelular                  int    `json:"ddd_celular"`
	NumeroCelular               int    `json:"numero_celular"`
	Email                       string `json:"email"`
}

// GuideResult is returned by IssuePaymentGuide
type GuideResult struct {
	Request ReturnStatus `json:"retornoNsdgxS2A"`
	Guide   PaymentGuide `json:"retornoNsdgx414"`
	// CodigoBarras is the barcode image, base64 encoded
	CodigoBarras string `json:"codigoBarras"`
}

// PaymentGuide is the DAE record with its barcode and printed message lines
type PaymentGuide struct {
	CodigoErro                    int    `json:"codigo_erro"`
	MensagemErro                  string `json:"mensagem_erro"`
	CodigoTipoContribuinte        string `json:"codigo_tipo_contribuinte"`
	CodigoMunicipioIBGE           string `json:"codigo_municipio_ibge"`
	DescricaoMunicipio            string `json:"descricao_municipio"`
	MesAnoDAE                     string `json:"mes_ano_dae"`
	DataVencimento                string `json:"data_vencimento"`
	LinhaDigitavel                string `json:"linha_digitavel"`
	CodigoBarras                  string `json:"codigo_barras"`
	NossoNumero                   string `json:"nosso_numero"`
	NomeContribuinte              string `json:"nome_contribuinte"`
	ValorTaxa                     string `json:"valor_taxa"`
	QuantidadeTaxa                int    `json:"quantidade_taxa"`
	DataEmissao                   string `json:"data_emissao"`
	CPFContribuinte               string `json:"cpf_contribuinte"`
	NumeroIdentificaoContribuinte string `json:"numero_identificao_contribuinte"`
	SiglaUFOrigemContribuinte     string `json:"sigla_uf_origem_contribuinte"`
	CampoMensagem1                string `json:"campo_mensagem_1"`
	CampoMensagem2                string `json:"campo_mensagem_2"`
	CampoMensagem3                string `json:"campo_mensagem_3"`
	CampoMensagem4                string `json:"campo_mensagem_4"`
	CampoMensagem5                string `json:"campo_mensagem_5"`
	CampoMensagem6                string `json:"campo_mensagem_6"`
	CampoMensagem7                string `json:"campo_mensagem_7"`
	CampoMensagem8                string `json:"campo_mensagem_8"`
	CampoMensagem9                string `json:"campo_mensagem_9"`
	CampoMensagem10               string `json:"campo_mensagem_10"`
	CampoMensagem11               string `json:"campo_mensagem_11"`
	CampoMensagem12               string `json:"campo_mensagem_12"`
	CampoMensagem13               string `json:"campo_mensagem_13"`
	CampoMensagem14               string `json:"campo_mensagem_14"`
	CampoMensagem15               string `json:"campo_mensagem_15"`
	CampoMensagem16               string `json:"campo_mensagem_16"`
	CampoMensagem17               string `json:"campo_mensagem_17"`
	CampoMensagem18               string `json:"campo_mensagem_18"`
	CodigoTaxa                    int    `json:"codigo_taxa"`
	CodigoMunicipio               string `json:"codigo_municipio"`
}

// StatusResult is returned by FetchStatus
type StatusResult struct {
	CPF                      string   `json:"cpf"`
	NumeroRenach             string   `json:"numero_renach"`
	NomeCondutor             string   `json:"nome_condutor"`
	NumeroFormularioRenach   string   `json:"numero_formulario_renach"`
	CodigoEtapa              int      `json:"codigo_etapa"`
	DescricaoEtapa           string   `json:"descricao_etapa"`
	Prazo                    int      `json:"prazo"`
	TituloEntrega            string   `json:"titulo_entrega"`
	DataEntregaLote          string   `json:"data_entrega_lote"`
	TituloHoraEntrega        string   `json:"titulo_hora_entrega"`
	HoraEntregaLote          string   `json:"hora_entrega_lote"`
	DataHoraStatus           string   `json:"data_hora_status"`
	TextoARCorreio           string   `json:"texto_ar_correio"`
	NumeroARCorreio          string   `json:"numero_ar_correio"`
	DataARCorreio            string   `json:"data_ar_correio"`
	SituacaoCNH              string   `json:"situacao_cnh"`
	DescricaoSituacaoEntrega string   `json:"descricao_situacao_entrega"`
	CodigoRetornoBinco       int      `json:"codigo_retorno_binco"`
	DescricaoRetornoBinco    string   `json:"descricao_retorno_binco"`
	DataRetornoBinco         string   `json:"data_retorno_binco"`
	DescricaoSituacaoCNH     string   `json:"descricao_situacao_cnh"`
	TextoLivreRejeicao       string   `json:"texto_livre_rejeicao"`
	TituloMotivoDevolucao    string   `json:"titulo_motivo_devolucao"`
	TituloMotivoBaixa        string   `json:"titulo_motivo_baixa"`
	TituloMotivoRejeicao     string   `json:"titulo_motivo_rejeicao"`
	QuantidadeMotivoRejeicao int      `json:"quantidade_motivo_rejeicao"`
	CodigoRejeicao           []string `json:"codigo_rejeicao"`
	MotivoRejeicao           []string `json:"motivo_rejeicao"`
	DescricaoAcao            string   `json:"descricao_acao"`
}
