package simulation

import (
	"fmt"
	"strconv"
	"strings"
)

// ChannelPlaceholder marks the position of the channel identifier in
// templated queries and responses.
const ChannelPlaceholder = "{ch_id}"

// ChannelDialogue is a dialogue template replicated per channel.
type ChannelDialogue struct {
	Query    string
	Response Response
}

// ChannelProperty is a property template replicated per channel. Each
// channel receives an independent value initialised to Default; the
// value spec and format strings are shared.
type ChannelProperty struct {
	Name    string
	Default string
	Getter  *GetterSpec
	Setter  *SetterSpec
	Spec    *ValueSpec
}

// ChannelSpan expands a numeric span into the channel identifier list
// [start, end], inclusive both ends.
func ChannelSpan(start, end int) ([]string, error) {
	if end < start {
		return nil, fmt.Errorf("%w: span %d..%d is empty", ErrInvalidChannelGroup, start, end)
	}
	ids := make([]string, 0, end-start+1)
	for i := start; i <= end; i++ {
		ids = append(ids, strconv.Itoa(i))
	}
	return ids, nil
}

// AddChannelGroup expands a set of templated dialogues and properties
// across the given channel identifiers.
//
// Expansion happens once, here: every (template, channel) pair
// produces one concrete dialogue or property with the placeholder
// substituted, appended in channel order so declaration order encodes
// match priority. Expanded properties are named "prop[id]" and hold
// independently mutable state per channel.
func (d *Definition) AddChannelGroup(name string, ids []string, dialogues []ChannelDialogue, props []ChannelProperty) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: group %q declares no channel ids", ErrInvalidChannelGroup, name)
	}

	for _, id := range ids {
		for _, dia := range dialogues {
			resp := dia.Response
			if resp.Sent() {
				resp = Text(substituteChannel(resp.String(), id))
			}
			d.AddDialogue(substituteChannel(dia.Query, id), resp)
		}

		for _, p := range props {
			expanded := fmt.Sprintf("%s[%s]", p.Name, id)

			var getter *GetterSpec
			if p.Getter != nil {
				getter = &GetterSpec{
					Query:    substituteChannel(p.Getter.Query, id),
					Response: substituteChannel(p.Getter.Response, id),
				}
			}

			var setter *SetterSpec
			if p.Setter != nil {
				s := *p.Setter
				s.Query = substituteChannel(s.Query, id)
				if s.Response.Sent() {
					s.Response = Text(substituteChannel(s.Response.String(), id))
				}
				if s.HasError && s.Error.Sent() {
					s.Error = Text(substituteChannel(s.Error.String(), id))
				}
				setter = &s
			}

			if err := d.AddProperty(expanded, p.Default, getter, setter, p.Spec); err != nil {
				return fmt.Errorf("channel group %q, channel %q: %w", name, id, err)
			}
		}
	}

	return nil
}

// substituteChannel replaces the channel placeholder with a concrete
// identifier.
func substituteChannel(template, id string) string {
	return strings.ReplaceAll(template, ChannelPlaceholder, id)
}
