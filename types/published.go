package types

// PublishedInterface is the action and table listing consumers render.
type PublishedInterface struct {
	Actions []PublishedAction `json:"actions" yaml:"actions"`
	Tables  []PublishedTable  `json:"tables" yaml:"tables"`
}

type PublishedAction struct {
	Name   string       `json:"name" yaml:"name"`
	Params []ActionParam `json:"params" yaml:"params"`
}

type ActionParam struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

type PublishedTable struct {
	Name string `json:"name" yaml:"name"`
}

func (pi *PublishedInterface) Action(name string) (*PublishedAction, bool) {
	for i := range pi.Actions {
		if pi.Actions[i].Name == name {
			return &pi.Actions[i], true
		}
	}
	return nil, false
}

func (pi *PublishedInterface) HasTable(name string) bool {
	for _, table := range pi.Tables {
		if table.Name == name {
			return true
		}
	}
	return false
}
