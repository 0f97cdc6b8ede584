package osmstore

// Tags is an unordered key/value tag set; keys are unique.
type Tags map[string]string

func (t Tags) Find(key string) string {
	return t[key]
}

func (t Tags) Has(key string) bool {
	_, ok := t[key]
	return ok
}

type MemberType uint8

const (
	NodeMember MemberType = iota
	WayMember
	RelationMember
)

func (mt MemberType) String() string {
	switch mt {
	case NodeMember:
		return "node"
	case WayMember:
		return "way"
	case RelationMember:
		return "relation"
	default:
		return "unknown"
	}
}

// Node coordinates are fixed-point decimicro degrees (degrees * 1e7).
type Node struct {
	ID  int64
	Lat int64
	Lon int64
	Tags
}

// Way node references are ordered: consecutive entries form graph edges.
type Way struct {
	ID    int64
	Nodes []int64
	Tags
}

type Member struct {
	Type MemberType
	Ref  int64
	Role string
}

type Relation struct {
	ID      int64
	Members []Member
	Tags
}

// Record is one of *Node, *Way or *Relation.
type Record interface {
	GetID() int64
	isRecord()
}

func (n *Node) GetID() int64     { return n.ID }
func (w *Way) GetID() int64      { return w.ID }
func (r *Relation) GetID() int64 { return r.ID }

func (*Node) isRecord()     {}
func (*Way) isRecord()      {}
func (*Relation) isRecord() {}

// Feed is a sequential source of typed records.
type Feed interface {
	Next() bool
	Record() Record
	Err() error
}

type SliceFeed struct {
	records []Record
	pos     int
}

func NewSliceFeed(records ...Record) *SliceFeed {
	return &SliceFeed{records: records, pos: -1}
}

func (f *SliceFeed) Next() bool {
	if f.pos+1 >= len(f.records) {
		return false
	}
	f.pos++
	return true
}

func (f *SliceFeed) Record() Record {
	return f.records[f.pos]
}

func (f *SliceFeed) Err() error {
	return nil
}
