package chatengine

// Fixed degraded results. The chat reply always carries prose and a
// status, even under total upstream failure; the HTTP layer logs these
// for observability.

func configurationErrorResult() *Result {
	return &Result{
		Text:             "Error de configuración: No se ha detectado una API Key válida (DeepSeek/OpenAI). Por favor, configure las variables de entorno.",
		Status:           StatusRisk,
		SuggestedActions: []string{},
	}
}

func quotaFallbackResult() *Result {
	return &Result{
		Text: "⚠️ **Aviso de Sistema**: El servicio de IA está temporalmente saturado (Cuota Excedida). \n\n" +
			"Sin embargo, puedo orientarle con información general: \n" +
			"Para temas laborales, consulte el Código Sustantivo del Trabajo. \n" +
			"Para temas inmobiliarios, la Ley 820 de 2003. \n" +
			"Le sugiero contactar directamente a nuestros abogados humanos.",
		Status:           StatusRisk,
		SuggestedActions: []string{},
	}
}

func transientFallbackResult() *Result {
	return &Result{
		Text:             "Lo siento, estoy experimentando dificultades técnicas para procesar tu consulta legal en este momento. Por favor, intenta de nuevo más tarde.",
		Status:           StatusAnalyzing,
		SuggestedActions: []string{},
	}
}
