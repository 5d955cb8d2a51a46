package emu_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32sim/emu"
)

type access struct {
	offset uint32
	value  uint8
}

// recordingPeripheral returns offset+0x10 on reads and records writes.
type recordingPeripheral struct {
	writes []access
	reads  []uint32
}

func (p *recordingPeripheral) Read8(offset uint32) uint8 {
	p.reads = append(p.reads, offset)
	return uint8(offset + 0x10)
}

func (p *recordingPeripheral) Write8(offset uint32, value uint8) {
	p.writes = append(p.writes, access{offset: offset, value: value})
}

var _ = Describe("Bus", func() {
	var (
		m   *emu.Memory
		bus *emu.Bus
		dev *recordingPeripheral
	)

	BeforeEach(func() {
		m = emu.NewMemory(0x2000)
		bus = emu.NewBus(m)
		dev = &recordingPeripheral{}
		Expect(bus.Map(emu.Window{Base: 0x1000, Size: 0x10}, dev)).To(Succeed())
	})

	Describe("Window", func() {
		It("should contain exactly [Base, Base+Size)", func() {
			w := emu.Window{Base: 0x1000, Size: 0x10}
			Expect(w.Contains(0x0FFF)).To(BeFalse())
			Expect(w.Contains(0x1000)).To(BeTrue())
			Expect(w.Contains(0x100F)).To(BeTrue())
			Expect(w.Contains(0x1010)).To(BeFalse())
		})

		It("should handle a window at the top of the address space", func() {
			w := emu.Window{Base: 0xFFFFFF00, Size: 0x100}
			Expect(w.Contains(0xFFFFFFFF)).To(BeTrue())
			Expect(w.Overlaps(emu.Window{Base: 0xFFFFFFF0, Size: 4})).To(BeTrue())
		})
	})

	It("should reject overlapping windows", func() {
		err := bus.Map(emu.Window{Base: 0x100C, Size: 0x10}, &recordingPeripheral{})
		Expect(errors.Is(err, emu.ErrWindowOverlap)).To(BeTrue())

		Expect(bus.Map(emu.Window{Base: 0x1010, Size: 0x10}, &recordingPeripheral{})).To(Succeed())
	})

	It("should route window accesses to the peripheral", func() {
		Expect(m.Write8(0x1003, 0xEE)).To(Succeed())

		v, err := bus.Read8(0x1003)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(uint8(0x13)))

		Expect(bus.Write8(0x1001, 0x41)).To(Succeed())
		Expect(dev.writes).To(Equal([]access{{offset: 1, value: 0x41}}))

		// Memory under the window is untouched.
		raw, _ := m.Read8(0x1001)
		Expect(raw).To(Equal(uint8(0)))
	})

	It("should route other accesses to memory", func() {
		Expect(bus.Write8(0x0FFF, 0x5A)).To(Succeed())

		v, err := m.Read8(0x0FFF)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(uint8(0x5A)))
		Expect(dev.writes).To(BeEmpty())
	})

	Describe("multi-byte accesses", func() {
		It("should compose words in little-endian order", func() {
			Expect(bus.Write32(0x100, 0xDEADBEEF)).To(Succeed())

			b, _ := m.Read8(0x100)
			Expect(b).To(Equal(uint8(0xEF)))

			v, err := bus.Read32(0x100)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(uint32(0xDEADBEEF)))

			h, err := bus.Read16(0x102)
			Expect(err).NotTo(HaveOccurred())
			Expect(h).To(Equal(uint16(0xDEAD)))
		})

		It("should compose words in big-endian order", func() {
			m.SetEndianness(emu.BigEndian)
			Expect(bus.Write16(0x200, 0x1234)).To(Succeed())

			b, _ := m.Read8(0x200)
			Expect(b).To(Equal(uint8(0x12)))

			h, err := bus.Read16(0x200)
			Expect(err).NotTo(HaveOccurred())
			Expect(h).To(Equal(uint16(0x1234)))
		})

		It("should split peripheral word writes into byte accesses", func() {
			Expect(bus.Write32(0x1004, 0x44332211)).To(Succeed())
			Expect(dev.writes).To(Equal([]access{
				{offset: 4, value: 0x11},
				{offset: 5, value: 0x22},
				{offset: 6, value: 0x33},
				{offset: 7, value: 0x44},
			}))
		})

		It("should fault when the access runs past memory", func() {
			_, err := bus.Read32(0x1FFE)
			Expect(errors.Is(err, emu.ErrMemoryBounds)).To(BeTrue())

			var memErr *emu.MemoryError
			Expect(errors.As(err, &memErr)).To(BeTrue())
			Expect(memErr.Addr).To(Equal(uint32(0x1FFE)))
			Expect(memErr.Size).To(Equal(4))
		})

		It("should fault instead of wrapping the address space", func() {
			_, err := bus.Read32(0xFFFFFFFE)
			Expect(errors.Is(err, emu.ErrMemoryBounds)).To(BeTrue())

			err = bus.Write16(0xFFFFFFFF, 1)
			Expect(errors.Is(err, emu.ErrMemoryBounds)).To(BeTrue())
		})
	})
})
