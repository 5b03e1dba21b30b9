// Command updiprog is a host-side programmer for UPDI-based AVR parts,
// driving a serial port the way tocurd-go-isp drives its USART/ISP
// bootloader link.
package main

import "github.com/serialupdi/updiprog/cmd/updiprog/cmd"

func main() {
	cmd.Execute()
}
