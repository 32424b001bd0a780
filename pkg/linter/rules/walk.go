package rules

import (
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/platinummonkey/weaver/pkg/linter"
)

// walkMessages visits every message, nested ones included, with its
// SourceCodeInfo path.
func walkMessages(file *descriptorpb.FileDescriptorProto, fn func(msg *descriptorpb.DescriptorProto, path []int32)) {
	var walk func(msgs []*descriptorpb.DescriptorProto, prefix []int32)
	walk = func(msgs []*descriptorpb.DescriptorProto, prefix []int32) {
		for i, msg := range msgs {
			p := linter.Path(prefix, int32(i))
			fn(msg, p)
			walk(msg.GetNestedType(), linter.Path(p, linter.MessageNestedType))
		}
	}
	walk(file.GetMessageType(), []int32{linter.FileMessageType})
}

// walkEnums visits top-level enums and enums nested in messages.
func walkEnums(file *descriptorpb.FileDescriptorProto, fn func(enum *descriptorpb.EnumDescriptorProto, path []int32)) {
	for i, enum := range file.GetEnumType() {
		fn(enum, []int32{linter.FileEnumType, int32(i)})
	}
	walkMessages(file, func(msg *descriptorpb.DescriptorProto, path []int32) {
		for i, enum := range msg.GetEnumType() {
			fn(enum, linter.Path(path, linter.MessageEnumType, int32(i)))
		}
	})
}
