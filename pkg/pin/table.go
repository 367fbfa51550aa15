package pin

import (
	"fmt"
	"sort"
	"strings"
)

// Line is a hardware GPIO line number.
type Line int

// Table maps symbolic pin names to hardware lines.
// Several names may alias the same line (e.g. "D11" and "MOSI").
type Table map[string]Line

// Board names accepted by BoardTable.
const (
	BoardNanoESP32     = "nano-esp32"
	BoardNanoESP32GPIO = "nano-esp32-gpio"
	BoardRaspberryPi   = "raspberrypi"
)

// Arduino Nano ESP32 with the board's D-style pin remap (API uses Dx).
// D13/SCK/LED_BUILTIN is reserved and intentionally absent.
var nanoESP32 = Table{
	"D0": 0, "RX": 0,
	"D1": 1, "TX": 1,
	"D2": 2,
	"D3": 3, "CTS": 3,
	"D4": 4, "DSR": 4,
	"D5": 5,
	"D6": 6,
	"D7": 7, "PIN_I2S_SCK": 7,
	"D8": 8, "PIN_I2S_FS": 8,
	"D9": 9, "PIN_I2S_SD": 9, "PIN_I2S_SD_OUT": 9,
	"D10": 10, "SS": 10, "PIN_I2S_SD_IN": 10,
	"D11": 11, "MOSI": 11,
	"D12": 12, "MISO": 12,
	"LED_RED": 14, "LEDR": 14,
	"LED_GREEN": 15, "LEDG": 15,
	"LED_BLUE": 16, "LEDB": 16, "RTS": 16,
	"A0": 17, "DTR": 17,
	"A1": 18,
	"A2": 19,
	"A3": 20,
	"A4": 21, "SDA": 21,
	"A5": 22, "SCL": 22,
	"A6": 23,
	"A7": 24,
}

// Arduino Nano ESP32 addressed by raw ESP32-S3 GPIO numbers.
var nanoESP32GPIO = Table{
	"D0": 44, "RX": 44,
	"D1": 43, "TX": 43,
	"D2": 5,
	"D3": 6, "CTS": 6,
	"D4": 7, "DSR": 7,
	"D5": 8,
	"D6": 9,
	"D7": 10, "PIN_I2S_SCK": 10,
	"D8": 17, "PIN_I2S_FS": 17,
	"D9": 18, "PIN_I2S_SD": 18, "PIN_I2S_SD_OUT": 18,
	"D10": 21, "SS": 21, "PIN_I2S_SD_IN": 21,
	"D11": 38, "MOSI": 38,
	"D12": 47, "MISO": 47,
	"LED_RED": 46, "LEDR": 46,
	"LED_GREEN": 0, "LEDG": 0,
	"LED_BLUE": 45, "LEDB": 45, "RTS": 45,
	"A0": 1, "DTR": 1,
	"A1": 2,
	"A2": 3,
	"A3": 4,
	"A4": 11, "SDA": 11,
	"A5": 12, "SCL": 12,
	"A6": 13,
	"A7": 14,
}

// raspberryPi returns the BCM numbering of the 40-pin header (GPIO2..GPIO27)
// plus the usual function aliases.
func raspberryPi() Table {
	t := make(Table, 40)
	for i := 2; i <= 27; i++ {
		t[fmt.Sprintf("GPIO%d", i)] = Line(i)
	}
	aliases := map[string]Line{
		"SDA": 2, "SCL": 3,
		"TXD": 14, "RXD": 15,
		"MOSI": 10, "MISO": 9, "SCLK": 11,
		"CE0": 8, "CE1": 7,
	}
	for name, line := range aliases {
		t[name] = line
	}
	return t
}

// BoardTable returns a copy of the named board table.
func BoardTable(board string) (Table, error) {
	switch strings.ToLower(board) {
	case BoardNanoESP32:
		return nanoESP32.Clone(), nil
	case BoardNanoESP32GPIO:
		return nanoESP32GPIO.Clone(), nil
	case BoardRaspberryPi, "rpi":
		return raspberryPi(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBoard, board)
	}
}

// Boards lists the names accepted by BoardTable.
func Boards() []string {
	return []string{BoardNanoESP32, BoardNanoESP32GPIO, BoardRaspberryPi}
}

// Clone returns an independent copy of the table.
func (t Table) Clone() Table {
	c := make(Table, len(t))
	for k, v := range t {
		c[k] = v
	}
	return c
}

// With returns a copy of the table with the overrides applied.
func (t Table) With(overrides map[string]int) Table {
	c := t.Clone()
	for name, line := range overrides {
		c[name] = Line(line)
	}
	return c
}

// Lookup resolves a name to its line.
func (t Table) Lookup(name string) (Line, bool) {
	line, ok := t[name]
	return line, ok
}

// Names returns the table's names in sorted order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
