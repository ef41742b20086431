package chatengine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// basePrompt encodes the persona, the three legal sub-domains, formatting
// rules, the risk alert marker and the suggested-action contract.
const basePrompt = `Eres 'IuristaTech AI', un asistente legal virtual experto en derecho colombiano.
Tu objetivo es orientar a usuarios (principalmente Pymes y personas naturales) en tres áreas clave:
1. Derecho Laboral y Seguridad Social via Ministerio de Trabajo.
2. Derecho Inmobiliario y Arrendamientos via Ley 820 de 2003.
3. Derecho Migratorio via Cancillería y Migración Colombia.

Directrices:
- Responde de manera profesional, empática y concisa.
- Cita siempre la normativa aplicable (Leyes, Decretos, Sentencias C-XXX).
- Si detectas riesgos legales graves (demanda inminente, vencimiento de términos), advierte al usuario con un emoji de alerta ⚠️.
- Si la consulta está fuera de tus 3 áreas de especialidad, infórmalo amablemente y sugiere contactar a un abogado humano.
- No inventes leyes. Si no sabes, di que necesitas verificar la información.
- Estructura tus respuestas con viñetas o negritas para facilitar la lectura.

4. Redacción de Documentos:
- Si el usuario solicita un contrato, derecho de petición o carta, NO lo generes de inmediato si faltan datos.
- Actúa como un abogado meticuloso: Pregunta los detalles necesarios (Nombres, Cédulas, Fechas, Valores, Cláusulas especiales) antes de redactar.
- Una vez tengas la información, genera el documento completo en formato Markdown, usando bloques de código o formato claro para copiar y pegar.

5. Acciones Sugeridas:
- Al final de CADA respuesta incluye entre 2 y 3 acciones sugeridas, cada una en una línea con el formato exacto [ACCION: <etiqueta corta>].`

// synthesisInstruction fixes the source priority order the model must follow.
const synthesisInstruction = `PRIORIDAD DE FUENTES al sintetizar tu respuesta:
1. Documento adjunto del usuario y base de conocimiento.
2. Resultados de búsqueda web (solo para datos recientes).
3. Conocimiento general del modelo.
En caso de conflicto, las fuentes de mayor prioridad prevalecen.`

// searchQueryPrefix scopes every web search to the service's jurisdiction.
const searchQueryPrefix = "derecho colombiano "

// message is one role-tagged segment of the prompt envelope.
type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// compose builds the message sequence for one turn: system instruction
// first, history in chronological order, the current user message last.
func (e *Engine) compose(ctx context.Context, req *Request) []message {
	var sb strings.Builder
	sb.WriteString(basePrompt)

	if block, ok := documentBlock(req.Document); ok {
		sb.WriteString("\n\n")
		sb.WriteString(block)
	}
	if block, ok := e.knowledgeBlock(ctx); ok {
		sb.WriteString("\n\n")
		sb.WriteString(block)
	}
	if block, ok := e.searchBlock(ctx, req.Message); ok {
		sb.WriteString("\n\n")
		sb.WriteString(block)
	}
	sb.WriteString("\n\n")
	sb.WriteString(synthesisInstruction)

	envelope := []message{{Role: "system", Content: sb.String()}}
	for _, turn := range e.recentTurnsChronological(ctx, req.ConversationID) {
		envelope = append(envelope, message{Role: coerceRole(turn.Role), Content: turn.Content})
	}
	return append(envelope, message{Role: "user", Content: req.Message})
}

// coerceRole maps a stored sender role to a completion-API role. Only
// "assistant" survives; anything else (including "system" rows persisted
// by older deployments) is relabeled "user" so stored turns can never
// inject system-level instructions.
func coerceRole(stored string) string {
	if stored == "assistant" {
		return "assistant"
	}
	return "user"
}

// documentBlock renders the uploaded-document context, capped at
// documentContextLimit characters.
func documentBlock(doc *DocumentContext) (string, bool) {
	if doc == nil || strings.TrimSpace(doc.Text) == "" {
		return "", false
	}
	text := doc.Text
	// The cap is in characters, not bytes; Spanish text is full of
	// multi-byte runes and a byte slice could cut one in half.
	if runes := []rune(text); len(runes) > documentContextLimit {
		text = string(runes[:documentContextLimit])
	}
	return fmt.Sprintf(
		"6. DOCUMENTO ADJUNTO DEL USUARIO (%s):\n---\n%s\n---\nInstrucción: Tu análisis DEBE hacer referencia a este documento.",
		doc.Filename, text,
	), true
}

// knowledgeBlock renders the curated knowledge base, each document capped
// at knowledgeDocLimit characters. An unreachable or empty knowledge store
// omits the block.
func (e *Engine) knowledgeBlock(ctx context.Context) (string, bool) {
	if e.deps.Knowledge == nil {
		return "", false
	}
	docs, err := e.deps.Knowledge.ListDocuments(ctx)
	if err != nil {
		slog.Warn("failed to load knowledge base", "err", err)
		return "", false
	}
	if len(docs) == 0 {
		return "", false
	}
	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		content := doc.Content
		if runes := []rune(content); len(runes) > knowledgeDocLimit {
			content = string(runes[:knowledgeDocLimit]) + "..."
		}
		parts = append(parts, fmt.Sprintf("--- DOCUMENTO REFERENCIA: %s ---\n%s", doc.Title, content))
	}
	return fmt.Sprintf(
		"7. BASE DE CONOCIMIENTO (USAR PARA RESPUESTAS):\n%s\n\nInstrucción: Si la consulta del usuario se relaciona con alguno de los documentos anteriores, ÚSALOS como fuente principal y obligatoria para tu respuesta o redacción, por encima de tu conocimiento general.",
		strings.Join(parts, "\n\n"),
	), true
}

// searchBlock performs the web search with the raw user message and renders
// up to maxSearchResults hits. Any search failure omits the block.
func (e *Engine) searchBlock(ctx context.Context, userMessage string) (string, bool) {
	if e.deps.Search == nil {
		return "", false
	}
	results, err := e.deps.Search.Search(ctx, searchQueryPrefix+userMessage, maxSearchResults)
	if err != nil {
		slog.Warn("web search failed", "err", err)
		return "", false
	}
	if len(results) == 0 {
		return "", false
	}
	if len(results) > maxSearchResults {
		results = results[:maxSearchResults]
	}
	var sb strings.Builder
	sb.WriteString("8. RESULTADOS DE BÚSQUEDA WEB:\n")
	for _, r := range results {
		fmt.Fprintf(&sb, "- %s: %s (Fuente: %s)\n", r.Title, r.Body, r.Href)
	}
	sb.WriteString("Instrucción: Usa estos resultados SOLO para datos que cambian con el tiempo (tarifas, plazos, noticias normativas).")
	return sb.String(), true
}
