package a2a

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TransportJSONRPC is the only transport this agent speaks.
const TransportJSONRPC = "JSONRPC"

// AgentCapabilities describes the optional protocol features of an agent.
type AgentCapabilities struct {
	Streaming              bool `json:"streaming"`
	PushNotifications      bool `json:"pushNotifications"`
	StateTransitionHistory bool `json:"stateTransitionHistory"`
}

// AgentInterface is one additional endpoint of an agent together with its transport.
type AgentInterface struct {
	URL       string `json:"url"`
	Transport string `json:"transport"`
}

// AgentProvider represents the organization behind an agent.
type AgentProvider struct {
	Organization string `json:"organization"`
	URL          string `json:"url,omitempty"`
}

// AgentSkill defines a specific skill offered by an agent.
type AgentSkill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	Examples    []string `json:"examples,omitempty"`
	InputModes  []string `json:"inputModes,omitempty"`
	OutputModes []string `json:"outputModes,omitempty"`
}

/*
AgentCard is the self-describing document an agent publishes at its
well-known path. Clients use it to find the RPC endpoint for the transport
they speak.
*/
type AgentCard struct {
	ProtocolVersion      string            `json:"protocolVersion,omitempty"`
	Name                 string            `json:"name"`
	Description          string            `json:"description"`
	URL                  string            `json:"url"`
	PreferredTransport   string            `json:"preferredTransport,omitempty"`
	AdditionalInterfaces []AgentInterface  `json:"additionalInterfaces,omitempty"`
	Provider             *AgentProvider    `json:"provider,omitempty"`
	Version              string            `json:"version"`
	DocumentationURL     string            `json:"documentationUrl,omitempty"`
	Capabilities         AgentCapabilities `json:"capabilities"`
	DefaultInputModes    []string          `json:"defaultInputModes"`
	DefaultOutputModes   []string          `json:"defaultOutputModes"`
	Skills               []AgentSkill      `json:"skills"`
}

/*
Transport returns the preferred transport of the card, defaulting to
JSONRPC when the card does not name one.
*/
func (card *AgentCard) Transport() string {
	if card == nil || strings.TrimSpace(card.PreferredTransport) == "" {
		return TransportJSONRPC
	}

	return card.PreferredTransport
}

func (card *AgentCard) String() string {
	var sb strings.Builder

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("212")).
		Bold(true)

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	sectionStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		Bold(true)

	indent := "   "
	bullet := "│ "

	line := func(prefix, label, value string) {
		sb.WriteString(prefix + labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}

	sb.WriteString(headerStyle.Render("Agent Card") + "\n")
	line(bullet, "Name: ", card.Name)

	if card.Description != "" {
		line(bullet, "Description: ", card.Description)
	}

	line(bullet, "URL: ", card.URL)
	line(bullet, "Version: ", card.Version)
	line(bullet, "Preferred Transport: ", card.Transport())

	if len(card.AdditionalInterfaces) > 0 {
		sb.WriteString("\n" + sectionStyle.Render("Interfaces") + "\n")

		for _, iface := range card.AdditionalInterfaces {
			line(bullet, iface.Transport+": ", iface.URL)
		}
	}

	sb.WriteString("\n" + sectionStyle.Render("Capabilities") + "\n")
	line(bullet, "Streaming: ", fmt.Sprintf("%v", card.Capabilities.Streaming))
	line(bullet, "Push Notifications: ", fmt.Sprintf("%v", card.Capabilities.PushNotifications))
	line(bullet, "State Transition History: ", fmt.Sprintf("%v", card.Capabilities.StateTransitionHistory))

	if len(card.Skills) > 0 {
		sb.WriteString("\n" + sectionStyle.Render("Skills") + "\n")

		for i, skill := range card.Skills {
			sb.WriteString(bullet + labelStyle.Render(fmt.Sprintf("Skill %d", i+1)) + "\n")
			line(bullet+indent, "ID: ", skill.ID)
			line(bullet+indent, "Name: ", skill.Name)

			if skill.Description != "" {
				line(bullet+indent, "Description: ", skill.Description)
			}

			if len(skill.Tags) > 0 {
				line(bullet+indent, "Tags: ", strings.Join(skill.Tags, ", "))
			}

			if len(skill.Examples) > 0 {
				line(bullet+indent, "Examples: ", strings.Join(skill.Examples, " | "))
			}
		}
	}

	return sb.String()
}
