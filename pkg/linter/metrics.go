package linter

import (
	"fmt"

	"google.golang.org/protobuf/types/descriptorpb"
)

func calculateMetrics(file *descriptorpb.FileDescriptorProto) FileMetrics {
	locator := NewLocator(file)
	m := FileMetrics{}

	var walk func(msgs []*descriptorpb.DescriptorProto, prefix []int32)
	walk = func(msgs []*descriptorpb.DescriptorProto, prefix []int32) {
		for i, msg := range msgs {
			p := Path(prefix, int32(i))
			m.MessageCount++
			m.FieldCount += len(msg.GetField())
			if locator.Comment(p...) != "" {
				m.CommentedMessages++
			}
			walk(msg.GetNestedType(), append(p, MessageNestedType))
		}
	}
	walk(file.GetMessageType(), []int32{FileMessageType})

	if m.MessageCount > 0 {
		m.DocumentationCoverage = 100 * float64(m.CommentedMessages) / float64(m.MessageCount)
	} else {
		m.DocumentationCoverage = 100
	}
	return m
}

func formatCoverage(got, required float64) string {
	return fmt.Sprintf("documentation coverage %.1f%% is below the required %.1f%%", got, required)
}
