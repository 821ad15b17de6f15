// Package ai wraps the Claude API as the optional natural-language
// front end to the REPL command surface.
package ai

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const commandSystemPromptTemplate = `You are a musical assistant for Seqtext, a text-terminal MIDI step sequencer. Your job is to translate user requests into Seqtext commands.

Available commands:
- goto <midi> <channel> <part> <step> [mode]: Move the edit cursor (all numbers 1-based)
- view <midi> <channel> <part> <step> [mode]: Move the view cursor
- set <label> <value>: Edit one column of the edit cursor's out mode (e.g. "set Note C4", "set Velocity 100")
- mode <name>: Select the edit cursor's out mode
- record on|off: Toggle recording of incoming MIDI into the pattern store
- copy on|off: Toggle copy mode
- viewshow on|off: Toggle the view-cursor display
- playshow on|off: Toggle the playback-position display
- playfunction NA|Part|Parts|All: Choose which parts are scheduled for playback
- viewfunction Only|Rec|Play: Choose what the view shows
- tempo <bpm>: Change the tempo
- copypart <midi> <channel> <from> <to> [reverse]: Copy one part onto another, optionally reversed
- map <conn> <field> <value>: Edit a Mapping Registry connection slot
- save <kind> <name> / load <kind> <name>: Persist or recall a preset (kind: mapping|outmode|inmode|music)

Parameter limits:
- midi/channel/part/step: plain positive integers, all 1-based
- Note columns use note names like C3, D#4, Bb2
- Velocity/CC-style columns: 0-127 plain numbers
- Tempo: 20-300 plain number

Current sequencer state will be provided. Respond ONLY with the commands to execute, one per line, no explanations. Be concise and musical.

Examples:
User: "make the current step louder"
You: set Velocity 127

User: "switch to the drum mode"
You: mode Drum

User: "speed it up a bit"
You: tempo 140
`

const chatSystemPromptTemplate = `You are a musical assistant for Seqtext, a text-terminal MIDI step sequencer. You help users understand their patterns, suggest ideas, answer questions, and discuss music theory.

Available commands in Seqtext:
- goto/view <midi> <channel> <part> <step> [mode]: Move a cursor
- set <label> <value>: Edit a column at the edit cursor
- mode <name>: Select an out mode
- record/copy/viewshow/playshow on|off: Toggle settings
- playfunction NA|Part|Parts|All, viewfunction Only|Rec|Play
- tempo <bpm>
- copypart <midi> <channel> <from> <to> [reverse]
- map <conn> <field> <value>, mapshow
- save/load/list/delete <kind> <name> (kind: mapping|outmode|inmode|music)
- show: Display the edit cursor's current slot
- ai: Enter AI session mode (you!)

Parameter limits:
- midi/channel/part/step: 1-based plain integers
- Note columns: C0-C8 (e.g., C3, D#4, Bb2)
- Velocity-style columns: 0-127 plain number
- Tempo: 20-300 plain number

When discussing patterns:
- Analyze the musical character
- Suggest variations or improvements
- Explain music theory concepts simply
- Be encouraging and creative

Current sequencer state will be provided. Respond conversationally and helpfully.`

const sessionSystemPromptTemplate = `You are a musical assistant in an interactive session with a user working on a pattern in Seqtext, a text-terminal MIDI step sequencer.

Available commands:
- goto/view <midi> <channel> <part> <step> [mode]: Move a cursor
- set <label> <value>: Edit a column at the edit cursor
- mode <name>: Select an out mode
- record/copy/viewshow/playshow on|off: Toggle settings
- playfunction NA|Part|Parts|All, viewfunction Only|Rec|Play
- tempo <bpm>
- copypart <midi> <channel> <from> <to> [reverse]
- map <conn> <field> <value>, mapshow
- save/load/list/delete <kind> <name> (kind: mapping|outmode|inmode|music)
- show: Display the edit cursor's current slot

Parameter limits:
- midi/channel/part/step: 1-based plain integers
- Note columns: C0-C8 (e.g., C3, D#4, Bb2)
- Velocity-style columns: 0-127 plain number
- Tempo: 20-300 plain number

Your role in this interactive session:
1. Have natural conversations about music and the pattern
2. Answer questions and explain music theory
3. When the user asks you to modify the pattern, respond with commands to execute
4. Be conversational - explain what you're doing and why
5. Ask for clarification when needed
6. Be encouraging and creative

Response format:
- For questions/discussion: Just respond conversationally
- For modifications: Explain what you'll do, then output commands in a special format

When outputting commands to execute, use this EXACT format:
[EXECUTE]
command1
command2
[/EXECUTE]

Be natural, helpful, and musical. Current sequencer state will be provided with each message.`

// Client wraps the Claude API client.
type Client struct {
	client              anthropic.Client
	conversationHistory []anthropic.MessageParam
}

// New creates a new AI client.
func New(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &Client{
		client: client,
	}, nil
}

// NewFromEnv creates a new AI client using the ANTHROPIC_API_KEY env var.
func NewFromEnv() (*Client, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	return New(apiKey)
}

// GenerateCommands asks Claude to generate commands for userRequest,
// given a textual description of the current sequencer state (the
// commands package renders this from the Settings State/Pattern
// Store, so ai has no dependency on their types).
func (c *Client) GenerateCommands(ctx context.Context, userRequest, stateDescription string) ([]string, error) {
	userMessage := fmt.Sprintf("Current state:\n%s\n\nUser request: %s", stateDescription, userRequest)

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.ModelClaude3_5HaikuLatest,
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: commandSystemPromptTemplate},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMessage)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("claude API error: %w", err)
	}

	responseText := textOf(message)
	lines := strings.Split(strings.TrimSpace(responseText), "\n")
	var commands []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			commands = append(commands, line)
		}
	}
	return commands, nil
}

// Chat asks Claude a question about the current state and returns a
// conversational response, maintaining history for follow-ups.
func (c *Client) Chat(ctx context.Context, question, stateDescription string) (string, error) {
	userMessage := fmt.Sprintf("Current state:\n%s\n\n%s", stateDescription, question)

	c.conversationHistory = append(c.conversationHistory,
		anthropic.NewUserMessage(anthropic.NewTextBlock(userMessage)))

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.ModelClaude3_5HaikuLatest,
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: chatSystemPromptTemplate},
		},
		Messages: c.conversationHistory,
	})
	if err != nil {
		return "", fmt.Errorf("claude API error: %w", err)
	}

	responseText := textOf(message)
	c.conversationHistory = append(c.conversationHistory,
		anthropic.NewAssistantMessage(anthropic.NewTextBlock(responseText)))

	return strings.TrimSpace(responseText), nil
}

// ClearHistory clears the conversation history.
func (c *Client) ClearHistory() {
	c.conversationHistory = nil
}

// SessionResponse contains the AI's response and any commands to execute.
type SessionResponse struct {
	Message  string
	Commands []string
}

// Session has an interactive conversation with the AI, maintaining
// history, and returns the response message plus any commands to
// execute.
func (c *Client) Session(ctx context.Context, userInput, stateDescription string) (*SessionResponse, error) {
	userMessage := fmt.Sprintf("Current state:\n%s\n\n%s", stateDescription, userInput)

	c.conversationHistory = append(c.conversationHistory,
		anthropic.NewUserMessage(anthropic.NewTextBlock(userMessage)))

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.ModelClaude3_5HaikuLatest,
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: sessionSystemPromptTemplate},
		},
		Messages: c.conversationHistory,
	})
	if err != nil {
		return nil, fmt.Errorf("claude API error: %w", err)
	}

	responseText := textOf(message)
	c.conversationHistory = append(c.conversationHistory,
		anthropic.NewAssistantMessage(anthropic.NewTextBlock(responseText)))

	return &SessionResponse{
		Message:  responseText,
		Commands: extractCommands(responseText),
	}, nil
}

func textOf(message *anthropic.Message) string {
	var responseText string
	for _, block := range message.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			responseText += b.Text
		}
	}
	return responseText
}

// extractCommands extracts commands from [EXECUTE]...[/EXECUTE] blocks.
func extractCommands(text string) []string {
	var commands []string

	executeStart := "[EXECUTE]"
	executeEnd := "[/EXECUTE]"

	startIdx := strings.Index(text, executeStart)
	if startIdx == -1 {
		return commands
	}

	endIdx := strings.Index(text[startIdx:], executeEnd)
	if endIdx == -1 {
		return commands
	}

	commandBlock := text[startIdx+len(executeStart) : startIdx+endIdx]
	lines := strings.Split(strings.TrimSpace(commandBlock), "\n")

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			commands = append(commands, line)
		}
	}

	return commands
}
