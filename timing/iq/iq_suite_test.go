package iq_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestInstructionQueue(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Instruction Queue Suite")
}
