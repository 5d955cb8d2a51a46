package uart_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/sarchlab/rv32sim/uart"
)

var _ = Describe("UART", func() {
	var (
		u    *uart.UART
		hook *test.Hook
	)

	BeforeEach(func() {
		var logger *logrus.Logger
		logger, hook = test.NewNullLogger()
		u = uart.New(uart.WithLogger(logger))
	})

	Describe("RX FIFO", func() {
		It("should deliver bytes in push order", func() {
			u.PushRx(0x41, 0x42, 0x43)

			Expect(u.ReadRxFIFO()).To(Equal(uint8(0x41)))
			Expect(u.ReadRxFIFO()).To(Equal(uint8(0x42)))
			Expect(u.ReadRxFIFO()).To(Equal(uint8(0x43)))
		})

		It("should track data availability in FLAGS", func() {
			Expect(u.Flags()).To(Equal(uint8(0)))

			u.PushRx('x')
			Expect(u.Flags() & uart.FlagRxAvailable).NotTo(BeZero())

			u.ReadRxFIFO()
			Expect(u.Flags()).To(Equal(uint8(0)))
		})

		It("should read 0 and warn on underflow", func() {
			Expect(u.ReadRxFIFO()).To(Equal(uint8(0)))
			Expect(u.Flags()).To(Equal(uint8(0)))

			Expect(hook.LastEntry()).NotTo(BeNil())
			Expect(hook.LastEntry().Level).To(Equal(logrus.WarnLevel))
		})

		It("should keep every byte from concurrent pushers", func() {
			const pushers = 8
			const perPusher = 100

			var wg sync.WaitGroup
			for i := 0; i < pushers; i++ {
				wg.Add(1)
				go func(v byte) {
					defer wg.Done()
					for j := 0; j < perPusher; j++ {
						u.PushRx(v)
					}
				}(byte(i))
			}
			wg.Wait()

			Expect(u.RxLen()).To(Equal(pushers * perPusher))

			counts := map[uint8]int{}
			for i := 0; i < pushers*perPusher; i++ {
				counts[u.ReadRxFIFO()]++
			}
			for i := 0; i < pushers; i++ {
				Expect(counts[uint8(i)]).To(Equal(perPusher))
			}
			Expect(u.Flags()).To(Equal(uint8(0)))
		})
	})

	Describe("TX FIFO", func() {
		It("should drain bytes in write order", func() {
			u.WriteTxFIFO('o')
			u.WriteTxFIFO('k')
			Expect(u.TxLen()).To(Equal(2))

			Expect(u.DrainTx()).To(Equal([]byte("ok")))
			Expect(u.TxLen()).To(Equal(0))
			Expect(u.DrainTx()).To(BeEmpty())
		})

		It("should signal the notify channel without blocking", func() {
			u.WriteTxFIFO('a')
			u.WriteTxFIFO('b')

			Eventually(u.Notify()).Should(Receive())
			Consistently(u.Notify()).ShouldNot(Receive())
		})
	})

	Describe("register window", func() {
		It("should map RX, TX and FLAGS offsets", func() {
			u.PushRx('r')
			Expect(u.Read8(uart.OffsetFlags)).To(Equal(uart.FlagRxAvailable))
			Expect(u.Read8(uart.OffsetRx)).To(Equal(uint8('r')))

			u.Write8(uart.OffsetTx, 't')
			Expect(u.DrainTx()).To(Equal([]byte("t")))
		})

		It("should ignore writes to read-only registers", func() {
			u.Write8(uart.OffsetRx, 1)
			u.Write8(uart.OffsetFlags, 0xFF)

			Expect(u.RxLen()).To(Equal(0))
			Expect(u.Flags()).To(Equal(uint8(0)))
			Expect(u.Read8(uart.OffsetTx)).To(Equal(uint8(0)))
		})

		It("should treat other offsets as unmapped", func() {
			u.PushRx('z')
			u.Write8(0x10, 'q')

			Expect(u.Read8(3)).To(Equal(uint8(0)))
			Expect(u.Read8(uart.WindowSize - 1)).To(Equal(uint8(0)))
			Expect(u.TxLen()).To(Equal(0))
			Expect(u.RxLen()).To(Equal(1))
		})
	})
})
