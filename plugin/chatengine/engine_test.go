package chatengine

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestGenerateWithoutCredentialShortCircuits(t *testing.T) {
	e := New(Config{}, Deps{})
	called := false
	e.complete = func(_ context.Context, _ Config, _ []message) (string, error) {
		called = true
		return "", nil
	}

	result := e.Generate(context.Background(), &Request{Message: "hola"})

	require.False(t, called, "no provider call is made without a credential")
	require.Equal(t, StatusRisk, result.Status)
	require.Contains(t, result.Text, "Error de configuración")
	require.Empty(t, result.SuggestedActions)
}

func TestGenerateQuotaFallback(t *testing.T) {
	e := New(Config{APIKey: "k", BaseURL: "http://x", Model: "m"}, Deps{})
	e.complete = func(_ context.Context, _ Config, _ []message) (string, error) {
		return "", errors.Wrap(errQuotaExceeded, "status 429")
	}

	result := e.Generate(context.Background(), &Request{Message: "hola"})

	require.Equal(t, StatusRisk, result.Status)
	require.Contains(t, result.Text, "Aviso de Sistema")
	require.Contains(t, result.Text, "Cuota Excedida")
}

func TestGenerateTransientFallback(t *testing.T) {
	e := New(Config{APIKey: "k", BaseURL: "http://x", Model: "m"}, Deps{})
	e.complete = func(_ context.Context, _ Config, _ []message) (string, error) {
		return "", errors.New("connection refused")
	}

	result := e.Generate(context.Background(), &Request{Message: "hola"})

	require.Equal(t, StatusAnalyzing, result.Status)
	require.Contains(t, result.Text, "dificultades técnicas")
	require.Empty(t, result.SuggestedActions)
}

func TestGenerateFullTurn(t *testing.T) {
	e := New(Config{APIKey: "k", BaseURL: "http://x", Model: "m"}, Deps{})
	e.complete = func(_ context.Context, _ Config, envelope []message) (string, error) {
		require.Equal(t, "system", envelope[0].Role)
		require.Equal(t, "user", envelope[len(envelope)-1].Role)
		return "Aquí tiene el borrador del contrato de arrendamiento.\n" +
			"[ACCION: Descargar Borrador]\n[ACCION: Agendar Revisión]", nil
	}

	result := e.Generate(context.Background(), &Request{Message: "Necesito un contrato"})

	require.Equal(t, StatusDocument, result.Status)
	require.Equal(t, "Aquí tiene el borrador del contrato de arrendamiento.", result.Text)
	require.Equal(t, []string{"Descargar Borrador", "Agendar Revisión"}, result.SuggestedActions)
}

func TestGenerateCustomClassifier(t *testing.T) {
	e := New(Config{APIKey: "k"}, Deps{})
	e.complete = func(_ context.Context, _ Config, _ []message) (string, error) {
		return "cualquier cosa", nil
	}
	e.SetClassifier(classifierFunc(func(string) Status { return StatusRisk }))

	result := e.Generate(context.Background(), &Request{Message: "hola"})
	require.Equal(t, StatusRisk, result.Status)
}

type classifierFunc func(string) Status

func (f classifierFunc) Classify(text string) Status { return f(text) }
