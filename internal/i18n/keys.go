// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"
	KeyWarning = "warning"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserInactive       = "auth.user_inactive"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthTokenRefreshed     = "auth.token_refreshed"
	KeyAuthForbidden          = "auth.forbidden"

	// Validation
	KeyValidationInvalid  = "validation.invalid"
	KeyValidationRequired = "validation.required"
	KeyRateLimitExceeded  = "rate_limit.exceeded"

	// Unidades administrativas
	KeyUnidadeNotFound        = "unidade.not_found"
	KeyUnidadeCreated         = "unidade.created"
	KeyUnidadeUpdated         = "unidade.updated"
	KeyUnidadeInativada       = "unidade.inativada"
	KeyUnidadeAtivada         = "unidade.ativada"
	KeyUnidadePossuiBens      = "unidade.possui_bens"
	KeyUnidadeCodigoDuplicado = "unidade.codigo_duplicado"
	KeyUnidadeInativa         = "unidade.inativa"

	// Bens patrimoniais
	KeyBemNotFound              = "bem.not_found"
	KeyBemCreated               = "bem.created"
	KeyBemUpdated               = "bem.updated"
	KeyBemAprovado              = "bem.aprovado"
	KeyBemReprovado             = "bem.reprovado"
	KeyBemNumeroDuplicado       = "bem.numero_duplicado"
	KeyBemNumeroInvalido        = "bem.numero_invalido"
	KeyBemNumeroObrigatorio     = "bem.numero_obrigatorio"
	KeyBemNumeroDeveEstarVazio  = "bem.numero_deve_estar_vazio"
	KeyBemFlagsExclusivas       = "bem.flags_exclusivas"
	KeyBemCampoBloqueado        = "bem.campo_bloqueado"
	KeyBemUnidadeObrigatoria    = "bem.unidade_obrigatoria"
	KeyBemObservacaoObrigatoria = "bem.observacao_obrigatoria"
	KeyBemValorNegativo         = "bem.valor_negativo"
	KeyBemCadastroJaAvaliado    = "bem.cadastro_ja_avaliado"
	KeyBemForaDaUnidade         = "bem.fora_da_unidade"
	KeyBemStatusBloqueado       = "bem.status_bloqueado"
	KeyBemBloqueadoPor          = "bem.bloqueado_por"
	KeyBemDesbloqueadoPor       = "bem.desbloqueado_por"
	KeyBemCadastroInicial       = "bem.cadastro_inicial"

	// Movimentações
	KeyMovimentacaoNotFound             = "movimentacao.not_found"
	KeyMovimentacaoCreated              = "movimentacao.created"
	KeyMovimentacaoAceita               = "movimentacao.aceita"
	KeyMovimentacaoRejeitada            = "movimentacao.rejeitada"
	KeyMovimentacaoCancelada            = "movimentacao.cancelada"
	KeyMovimentacaoPendenteExistente    = "movimentacao.pendente_existente"
	KeyMovimentacaoBemNaoAprovado       = "movimentacao.bem_nao_aprovado"
	KeyMovimentacaoBemSemUnidade        = "movimentacao.bem_sem_unidade"
	KeyMovimentacaoMesmaUnidade         = "movimentacao.mesma_unidade"
	KeyMovimentacaoOrigemInativa        = "movimentacao.origem_inativa"
	KeyMovimentacaoDestinoInativa       = "movimentacao.destino_inativa"
	KeyMovimentacaoProprioSolicitante   = "movimentacao.proprio_solicitante"
	KeyMovimentacaoOperadorOrigem       = "movimentacao.operador_origem"
	KeyMovimentacaoForaDestino          = "movimentacao.fora_destino"
	KeyMovimentacaoCancelarNaoPermitido = "movimentacao.cancelar_nao_permitido"
	KeyMovimentacaoJaFinalizada         = "movimentacao.ja_finalizada"
	KeyMovimentacaoLoteResumo           = "movimentacao.lote_resumo"

	// Extração de números
	KeyExtracaoConfirmacao = "extracao.confirmacao"
	KeyExtracaoAplicada    = "extracao.aplicada"

	// Documento CIMBPM
	KeyDocumentoNotFound  = "documento.not_found"
	KeyDocumentoForbidden = "documento.forbidden"
)
