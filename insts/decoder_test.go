package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32sim/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	Describe("Classify", func() {
		expected := map[uint32]insts.Format{
			0x33: insts.FormatR,
			0x03: insts.FormatI,
			0x13: insts.FormatI,
			0x67: insts.FormatI,
			0x23: insts.FormatS,
			0x63: insts.FormatB,
			0x17: insts.FormatU,
			0x37: insts.FormatU,
			0x6F: insts.FormatJ,
		}

		It("should map every opcode value to exactly one format", func() {
			for op := uint32(0); op < 128; op++ {
				want, ok := expected[op]
				if !ok {
					want = insts.FormatInvalid
				}
				Expect(insts.Classify(op)).To(Equal(want), "opcode 0x%02x", op)
				// Only the low 7 bits participate.
				Expect(insts.Classify(op|0xFFFFFF80)).To(Equal(want), "opcode 0x%02x", op)
			}
		})

		It("should classify 0x7F as invalid", func() {
			Expect(insts.Classify(0x7F)).To(Equal(insts.FormatInvalid))

			inst := decoder.Decode(0x7F)
			Expect(inst.Format).To(Equal(insts.FormatInvalid))
			Expect(inst.Op).To(Equal(insts.OpUnknown))
			Expect(inst.Word).To(Equal(uint32(0x7F)))
		})
	})

	Describe("R-type", func() {
		// add x3, x1, x2 -> 0x002081B3
		It("should decode ADD x3, x1, x2", func() {
			inst := decoder.Decode(0x002081B3)

			Expect(inst.Format).To(Equal(insts.FormatR))
			Expect(inst.Op).To(Equal(insts.OpADD))
			Expect(inst.Rd).To(Equal(uint8(3)))
			Expect(inst.Rs1).To(Equal(uint8(1)))
			Expect(inst.Rs2).To(Equal(uint8(2)))
			Expect(inst.Funct3).To(Equal(uint8(0)))
			Expect(inst.Funct7).To(Equal(uint8(0)))
			Expect(inst.Opcode).To(Equal(insts.OpcodeOp))
		})

		// sub x3, x1, x2 -> 0x402081B3
		It("should decode SUB x3, x1, x2", func() {
			inst := decoder.Decode(0x402081B3)

			Expect(inst.Op).To(Equal(insts.OpSUB))
			Expect(inst.Funct7).To(Equal(uint8(0x20)))
		})

		It("should decode SRA with funct7 bit 5 set", func() {
			// sra x3, x1, x2
			inst := decoder.Decode(0x4020D1B3)
			Expect(inst.Op).To(Equal(insts.OpSRA))
		})

		It("should select SUB for any non-zero funct7 and flag it non-canonical", func() {
			// mul x3, x1, x2
			inst := decoder.Decode(0x022081B3)
			Expect(inst.Format).To(Equal(insts.FormatR))
			Expect(inst.Op).To(Equal(insts.OpSUB))
			Expect(inst.Canonical()).To(BeFalse())
		})

		It("should ignore funct7 where it does not disambiguate", func() {
			// sll x3, x1, x2 with funct7 = 0x20
			inst := decoder.Decode(0x20<<25 | 2<<20 | 1<<15 | 1<<12 | 3<<7 | 0x33)
			Expect(inst.Op).To(Equal(insts.OpSLL))
			Expect(inst.Canonical()).To(BeFalse())
		})

		It("should treat base encodings as canonical", func() {
			Expect(decoder.Decode(0x002081B3).Canonical()).To(BeTrue())
			Expect(decoder.Decode(0x402081B3).Canonical()).To(BeTrue())
			Expect(decoder.Decode(0x4020D1B3).Canonical()).To(BeTrue())
			Expect(decoder.Decode(0x0020D1B3).Canonical()).To(BeTrue())
		})

		DescribeTable("funct3 selection",
			func(funct3 uint32, want insts.Op) {
				word := funct3<<12 | 2<<20 | 1<<15 | 3<<7 | 0x33
				Expect(decoder.Decode(word).Op).To(Equal(want))
			},
			Entry("ADD", uint32(0), insts.OpADD),
			Entry("SLL", uint32(1), insts.OpSLL),
			Entry("SLT", uint32(2), insts.OpSLT),
			Entry("SLTU", uint32(3), insts.OpSLTU),
			Entry("XOR", uint32(4), insts.OpXOR),
			Entry("SRL", uint32(5), insts.OpSRL),
			Entry("OR", uint32(6), insts.OpOR),
			Entry("AND", uint32(7), insts.OpAND),
		)

		DescribeTable("funct7 0x01 selection",
			func(funct3 uint32, want insts.Op) {
				word := 0x01<<25 | funct3<<12 | 2<<20 | 1<<15 | 3<<7 | 0x33
				Expect(decoder.Decode(word).Op).To(Equal(want))
			},
			Entry("SUB", uint32(0), insts.OpSUB),
			Entry("SLL", uint32(1), insts.OpSLL),
			Entry("XOR", uint32(4), insts.OpXOR),
			Entry("SRA", uint32(5), insts.OpSRA),
			Entry("AND", uint32(7), insts.OpAND),
		)
	})

	Describe("I-type", func() {
		// addi x1, x0, 5 -> 0x00500093
		It("should decode ADDI x1, x0, 5", func() {
			inst := decoder.Decode(0x00500093)

			Expect(inst.Format).To(Equal(insts.FormatI))
			Expect(inst.Op).To(Equal(insts.OpADDI))
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(inst.Rs1).To(Equal(uint8(0)))
			Expect(inst.Imm).To(Equal(int32(5)))
		})

		// addi x1, x0, -1 -> 0xFFF00093
		It("should sign-extend a negative immediate", func() {
			inst := decoder.Decode(0xFFF00093)
			Expect(inst.Imm).To(Equal(int32(-1)))
		})

		It("should sign-extend the most negative immediate", func() {
			// addi x1, x0, -2048
			inst := decoder.Decode(0x80000093)
			Expect(inst.Imm).To(Equal(int32(-2048)))
		})

		It("should decode the largest positive immediate", func() {
			// addi x1, x0, 2047
			inst := decoder.Decode(0x7FF00093)
			Expect(inst.Imm).To(Equal(int32(2047)))
		})

		// srai x1, x2, 3 -> 0x40315093
		It("should decode SRAI from imm[11:5]", func() {
			inst := decoder.Decode(0x40315093)

			Expect(inst.Op).To(Equal(insts.OpSRAI))
			Expect(inst.Funct7).To(Equal(uint8(0x20)))
			Expect(inst.Imm & 0x1F).To(Equal(int32(3)))
			Expect(inst.Canonical()).To(BeTrue())
		})

		It("should resolve shift immediates with reserved imm[11:5]", func() {
			// funct3 5, shamt 3, imm[11:5] = 0x01
			inst := decoder.Decode(0x02315093)
			Expect(inst.Op).To(Equal(insts.OpSRAI))
			Expect(inst.Canonical()).To(BeFalse())

			// funct3 1, shamt 3, imm[11:5] = 0x20
			inst = decoder.Decode(0x40311093)
			Expect(inst.Op).To(Equal(insts.OpSLLI))
			Expect(inst.Canonical()).To(BeFalse())
		})

		It("should decode loads by funct3", func() {
			// lw x5, -4(x2)
			inst := decoder.Decode(0xFFC12283)

			Expect(inst.Op).To(Equal(insts.OpLW))
			Expect(inst.Rd).To(Equal(uint8(5)))
			Expect(inst.Rs1).To(Equal(uint8(2)))
			Expect(inst.Imm).To(Equal(int32(-4)))
		})

		It("should leave unused load widths unresolved", func() {
			// funct3 = 3 (ld, RV64 only)
			inst := decoder.Decode(0x0000B083)
			Expect(inst.Format).To(Equal(insts.FormatI))
			Expect(inst.Op).To(Equal(insts.OpUnknown))
		})

		It("should decode JALR", func() {
			// jalr x1, 8(x5)
			inst := decoder.Decode(0x008280E7)

			Expect(inst.Op).To(Equal(insts.OpJALR))
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(inst.Rs1).To(Equal(uint8(5)))
			Expect(inst.Imm).To(Equal(int32(8)))
		})
	})

	Describe("S-type", func() {
		// sw x2, 8(x1) -> 0x0020A423
		It("should decode SW x2, 8(x1)", func() {
			inst := decoder.Decode(0x0020A423)

			Expect(inst.Format).To(Equal(insts.FormatS))
			Expect(inst.Op).To(Equal(insts.OpSW))
			Expect(inst.Rs1).To(Equal(uint8(1)))
			Expect(inst.Rs2).To(Equal(uint8(2)))
			Expect(inst.Imm).To(Equal(int32(8)))
		})

		// sw x2, -4(x1) -> 0xFE20AE23
		It("should sign-extend a negative store offset", func() {
			inst := decoder.Decode(0xFE20AE23)
			Expect(inst.Imm).To(Equal(int32(-4)))
		})
	})

	Describe("B-type", func() {
		// beq x1, x2, 8 -> 0x00208463
		It("should decode BEQ x1, x2, 8", func() {
			inst := decoder.Decode(0x00208463)

			Expect(inst.Format).To(Equal(insts.FormatB))
			Expect(inst.Op).To(Equal(insts.OpBEQ))
			Expect(inst.Rs1).To(Equal(uint8(1)))
			Expect(inst.Rs2).To(Equal(uint8(2)))
			Expect(inst.Imm).To(Equal(int32(8)))
		})

		// bne x1, x2, -8 -> 0xFE209CE3
		It("should decode a backward branch", func() {
			inst := decoder.Decode(0xFE209CE3)

			Expect(inst.Op).To(Equal(insts.OpBNE))
			Expect(inst.Imm).To(Equal(int32(-8)))
		})

		It("should place imm[11] from bit 7", func() {
			// beq x0, x0, 2048: only imm[11] set
			inst := decoder.Decode(0x00000063 | 1<<7)
			Expect(inst.Imm).To(Equal(int32(2048)))
		})

		It("should always clear bit 0", func() {
			inst := decoder.Decode(0xFFFFFFE3)
			Expect(inst.Imm & 1).To(Equal(int32(0)))
			Expect(inst.Imm).To(Equal(int32(-2)))
		})

		It("should leave funct3 2 and 3 unresolved", func() {
			inst := decoder.Decode(0x00002063)
			Expect(inst.Op).To(Equal(insts.OpUnknown))
		})
	})

	Describe("U-type", func() {
		// lui x5, 0x12345 -> 0x123452B7
		It("should decode LUI with the immediate in place", func() {
			inst := decoder.Decode(0x123452B7)

			Expect(inst.Format).To(Equal(insts.FormatU))
			Expect(inst.Op).To(Equal(insts.OpLUI))
			Expect(inst.Rd).To(Equal(uint8(5)))
			Expect(inst.Imm).To(Equal(int32(0x12345000)))
		})

		It("should keep the top bit of the immediate", func() {
			// lui x1, 0xFFFFF
			inst := decoder.Decode(0xFFFFF0B7)
			Expect(uint32(inst.Imm)).To(Equal(uint32(0xFFFFF000)))
		})

		It("should decode AUIPC", func() {
			// auipc x1, 1
			inst := decoder.Decode(0x00001097)
			Expect(inst.Op).To(Equal(insts.OpAUIPC))
			Expect(inst.Imm).To(Equal(int32(0x1000)))
		})
	})

	Describe("J-type", func() {
		// jal x1, 16 -> 0x010000EF
		It("should decode JAL x1, 16", func() {
			inst := decoder.Decode(0x010000EF)

			Expect(inst.Format).To(Equal(insts.FormatJ))
			Expect(inst.Op).To(Equal(insts.OpJAL))
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(inst.Imm).To(Equal(int32(16)))
		})

		// jal x0, -4 -> 0xFFDFF06F
		It("should decode a backward jump", func() {
			inst := decoder.Decode(0xFFDFF06F)
			Expect(inst.Imm).To(Equal(int32(-4)))
		})

		It("should place imm[11] from bit 20 and imm[19:12] in place", func() {
			// jal x0, 0x800 then jal x0, 0x1000
			Expect(decoder.Decode(0x0010006F).Imm).To(Equal(int32(0x800)))
			Expect(decoder.Decode(0x0000106F).Imm).To(Equal(int32(0x1000)))
		})
	})

	Describe("String", func() {
		It("should render assembler text", func() {
			Expect(decoder.Decode(0x00500093).String()).To(Equal("addi x1, x0, 5"))
			Expect(decoder.Decode(0x0020A423).String()).To(Equal("sw x2, 8(x1)"))
			Expect(decoder.Decode(0x7F).String()).To(Equal("invalid 0x0000007f"))
		})

		It("should name operations and formats", func() {
			Expect(insts.OpUnknown.String()).To(Equal("unknown"))
			Expect(insts.OpSRAI.String()).To(Equal("srai"))
			Expect(insts.OpAND.String()).To(Equal("and"))
			Expect(insts.Op(200).String()).To(Equal("Op(200)"))
			Expect(insts.FormatInvalid.String()).To(Equal("invalid"))
			Expect(insts.FormatJ.String()).To(Equal("J"))
		})
	})
})
