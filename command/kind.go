package command

// Kind identifies the command keyword at the start of a line.
type Kind uint8

const (
	Unknown Kind = iota

	Allocate  // ALLOCATE
	SIP       // SIP
	Change    // CHANGE
	Balance   // BALANCE
	Rebalance // REBALANCE
)

var kindNames = map[Kind]string{
	Unknown:   "UNKNOWN",
	Allocate:  "ALLOCATE",
	SIP:       "SIP",
	Change:    "CHANGE",
	Balance:   "BALANCE",
	Rebalance: "REBALANCE",
}

var keywords = map[string]Kind{
	"ALLOCATE":  Allocate,
	"SIP":       SIP,
	"CHANGE":    Change,
	"BALANCE":   Balance,
	"REBALANCE": Rebalance,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseKind maps a keyword to its Kind. Matching is exact and case-sensitive;
// anything else is Unknown.
func ParseKind(keyword string) Kind {
	return keywords[keyword]
}

// Kinds returns the recognised command kinds in the order they usually appear
// in a command file.
func Kinds() []Kind {
	return []Kind{Allocate, SIP, Change, Balance, Rebalance}
}
