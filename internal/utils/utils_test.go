package utils

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("utils-test-secret")

	token, err := GenerateJWT(7, "gestor", []string{"GESTOR_PATRIMONIO"}, 1)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "gestor", claims.Username)
	assert.Equal(t, []string{"GESTOR_PATRIMONIO"}, claims.Papeis)
	assert.Equal(t, "7", claims.Subject)

	refresh, err := GenerateRefreshToken(7, 2)
	require.NoError(t, err)
	id, err := ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, uint(7), id)
}

func TestJWTRejected(t *testing.T) {
	SetJWTSecret("utils-test-secret")
	token, err := GenerateJWT(7, "gestor", nil, 1)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))
	_, err = ValidateJWT(tampered)
	assert.Error(t, err)

	expired, err := GenerateJWT(7, "gestor", nil, -1)
	require.NoError(t, err)
	_, err = ValidateJWT(expired)
	assert.Error(t, err)

	SetJWTSecret("another-secret")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
	_, err = ValidateRefreshToken(token)
	assert.Error(t, err)
}

func TestJWTTokenKindsNotInterchangeable(t *testing.T) {
	SetJWTSecret("utils-test-secret")

	access, err := GenerateJWT(42, "op", []string{"OPERADOR_INVENTARIO"}, 1)
	require.NoError(t, err)
	_, err = ValidateRefreshToken(access)
	assert.Error(t, err)

	refresh, err := GenerateRefreshToken(42, 2)
	require.NoError(t, err)
	_, err = ValidateJWT(refresh)
	assert.Error(t, err)

	id, err := ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestNumeroPatrimonialValido(t *testing.T) {
	assert.True(t, NumeroPatrimonialValido("123.456789012-3"))
	assert.True(t, NumeroPatrimonialValido("000.000000000042-0"))
	assert.False(t, NumeroPatrimonialValido("123.456789012"))
	assert.False(t, NumeroPatrimonialValido("1234567890123"))
	assert.False(t, NumeroPatrimonialValido("45/2019"))

	assert.NoError(t, ValidateVar("123.456789012-3", "numero_patrimonial"))
	assert.Error(t, ValidateVar("abc", "numero_patrimonial"))
	assert.NoError(t, ValidateVar("doacao", "origem_bem"))
	assert.Error(t, ValidateVar("roubo", "origem_bem"))
}

func TestGetValidationErrors(t *testing.T) {
	type request struct {
		NomeCompleto string `validate:"required"`
		Numero       string `validate:"numero_patrimonial"`
	}

	errs := GetValidationErrors(ValidateStruct(request{Numero: "1"}))
	require.Len(t, errs, 2)
	assert.Equal(t, "nome_completo", errs[0].Field)
	assert.Equal(t, "required", errs[0].Tag)
	assert.Equal(t, "numero", errs[1].Field)
	assert.Equal(t, "numero_patrimonial", errs[1].Tag)

	assert.Empty(t, GetValidationErrors(ValidateStruct(request{NomeCompleto: "x", Numero: "123.456789012-3"})))
}

func TestPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/bens?page=3&limit=10&search=mesa", nil)

	params := GetPaginationParams(c)
	assert.Equal(t, 3, params.Page)
	assert.Equal(t, 10, params.Limit)
	assert.Equal(t, "mesa", params.Search)
	assert.Equal(t, 20, params.Offset())

	result := CreatePaginationResult([]int{1, 2}, 25, params)
	assert.Equal(t, 3, result.TotalPages)
	assert.EqualValues(t, 25, result.Total)
}
