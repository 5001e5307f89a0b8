package serialize

import "fmt"

// wireNode is a hand-written protobuf message, encoded and decoded by
// github.com/gogo/protobuf/proto's reflection-based codec rather than
// protoc-generated Marshal/Unmarshal methods — there is no protoc
// invocation in this build, so the message satisfies proto.Message
// directly instead of embedding generated plumbing.
type wireNode struct {
	Id         int64    `protobuf:"varint,1,opt,name=id" json:"id"`
	ParentId   int64    `protobuf:"varint,2,opt,name=parent_id" json:"parent_id"`
	IsLeaf     bool     `protobuf:"varint,3,opt,name=is_leaf" json:"is_leaf"`
	Keys       [][]byte `protobuf:"bytes,4,rep,name=keys" json:"keys"`
	ChildIds   []int64  `protobuf:"varint,5,rep,name=child_ids" json:"child_ids"`
	NextLeafId int64    `protobuf:"varint,6,opt,name=next_leaf_id" json:"next_leaf_id"`
	Values     [][]byte `protobuf:"bytes,7,rep,name=values" json:"values"`
}

func (m *wireNode) Reset()         { *m = wireNode{} }
func (m *wireNode) String() string { return fmt.Sprintf("%+v", *m) }
func (*wireNode) ProtoMessage()    {}
