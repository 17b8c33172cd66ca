package models

import (
	"encoding/json"

	"github.com/go-faster/errors"
)

var ErrUnknownLineItem = errors.New("unknown line item type")

// Lines is the ordered product list of a cart. On the wire every entry carries
// a "type" discriminator selecting its concrete LineItem.
type Lines []LineItem

type lineHeader struct {
	Type LineItemType `json:"type"`
}

func (l *Lines) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*l = nil
		return nil
	}

	out := make(Lines, 0, len(raw))
	for i, msg := range raw {
		item, err := decodeLine(msg)
		if err != nil {
			return errors.Wrapf(err, "products[%d]", i)
		}
		out = append(out, item)
	}
	*l = out
	return nil
}

func decodeLine(msg json.RawMessage) (LineItem, error) {
	var h lineHeader
	if err := json.Unmarshal(msg, &h); err != nil {
		return nil, err
	}

	switch h.Type {
	case LineShop:
		var v ShopItem
		err := json.Unmarshal(msg, &v)
		return v, err
	case LineClass:
		var v ClassItem
		err := json.Unmarshal(msg, &v)
		return v, err
	case LineCourse:
		var v CourseItem
		err := json.Unmarshal(msg, &v)
		return v, err
	case LineCasual:
		var v CasualItem
		err := json.Unmarshal(msg, &v)
		return v, err
	case LineMembership:
		var v MembershipItem
		err := json.Unmarshal(msg, &v)
		return v, err
	case LinePrepaid:
		var v PrepaidItem
		err := json.Unmarshal(msg, &v)
		return v, err
	case LineGroup:
		var v GroupItem
		err := json.Unmarshal(msg, &v)
		return v, err
	}
	return nil, errors.Wrapf(ErrUnknownLineItem, "type %q", h.Type)
}

func (l Lines) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}

	out := make([]json.RawMessage, 0, len(l))
	for _, item := range l {
		body, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(body, &fields); err != nil {
			return nil, err
		}
		kind, _ := json.Marshal(item.Kind())
		fields["type"] = kind

		tagged, err := json.Marshal(fields)
		if err != nil {
			return nil, err
		}
		out = append(out, tagged)
	}
	return json.Marshal(out)
}
