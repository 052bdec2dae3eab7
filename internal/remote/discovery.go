package remote

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/W47K3R9/LudEQ/dsp/eq"
)

// DiscoveryPrefix is the Home Assistant discovery root.
const DiscoveryPrefix = "homeassistant"

// Entity is one Home Assistant discovery document.
type Entity struct {
	Topic  string
	Config map[string]any
}

// Entities returns a discovery document per parameter: a "number" for
// continuous parameters and a "select" for slopes.
func (c *Client) Entities() []Entity {
	device := map[string]any{
		"identifiers":  []string{c.uniqueID("eq")},
		"name":         "LudEQ",
		"manufacturer": "LudEQ",
		"model":        "3-band equalizer",
	}
	availability := map[string]any{"topic": c.topic("availability")}

	layout := eq.Layout()
	out := make([]Entity, 0, len(layout))
	for _, spec := range layout {
		id := c.uniqueID(spec.Slug())
		cfg := map[string]any{
			"name":           spec.Name,
			"unique_id":      id,
			"device":         device,
			"availability":   availability,
			"command_topic":  c.topic(spec.Slug(), "set"),
			"state_topic":    c.topic("state"),
			"value_template": fmt.Sprintf("{{ value_json[%q] }}", spec.Name),
		}

		domain := "number"
		if spec.IsChoice() {
			domain = "select"
			cfg["options"] = spec.Choices
			choices, _ := json.Marshal(spec.Choices)
			cfg["value_template"] = fmt.Sprintf("{{ %s[value_json[%q] | int] }}", choices, spec.Name)
		} else {
			cfg["min"] = spec.Min
			cfg["max"] = spec.Max
			cfg["step"] = spec.Step
			cfg["mode"] = "box"
			if spec.Unit != "" {
				cfg["unit_of_measurement"] = spec.Unit
			}
		}

		out = append(out, Entity{
			Topic:  fmt.Sprintf("%s/%s/%s/config", DiscoveryPrefix, domain, id),
			Config: cfg,
		})
	}

	return out
}

func (c *Client) uniqueID(name string) string {
	return fmt.Sprintf("%s_%s", sanitizeID(c.prefix), name)
}

func sanitizeID(s string) string {
	b := []byte(s)
	for i, ch := range b {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
		case ch >= 'A' && ch <= 'Z':
			b[i] = ch + 'a' - 'A'
		default:
			b[i] = '_'
		}
	}

	return string(b)
}

func (c *Client) publishDiscovery(conn mqtt.Client) {
	for _, e := range c.Entities() {
		data, err := json.Marshal(e.Config)
		if err != nil {
			c.logger.Error("marshal discovery", "topic", e.Topic, "err", err)
			continue
		}
		if token := conn.Publish(e.Topic, 0, true, data); token.Wait() && token.Error() != nil {
			c.logger.Warn("publish discovery failed", "topic", e.Topic, "err", token.Error())
		}
	}
}
