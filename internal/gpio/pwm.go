//go:build linux

package gpio

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// sysfsPWM drives one channel of a kernel pwmchip through sysfs.
// go-gpiocdev covers GPIO lines only; PWM has its own kernel interface
// under /sys/class/pwm.
type sysfsPWM struct {
	dir      string // /sys/class/pwm/pwmchipN/pwmM
	periodNs uint32
}

func newSysfsPWM(chip, channel int, frequencyHz uint32) (*sysfsPWM, error) {
	if frequencyHz == 0 {
		return nil, fmt.Errorf("pwm frequency must be positive")
	}

	chipDir := fmt.Sprintf("/sys/class/pwm/pwmchip%d", chip)
	p := &sysfsPWM{
		dir:      filepath.Join(chipDir, fmt.Sprintf("pwm%d", channel)),
		periodNs: uint32(time.Second.Nanoseconds() / int64(frequencyHz)),
	}

	if _, err := os.Stat(p.dir); os.IsNotExist(err) {
		if err := writeSysfs(filepath.Join(chipDir, "export"), channel); err != nil {
			return nil, fmt.Errorf("export pwm%d: %w", channel, err)
		}
		// The kernel creates the channel directory asynchronously.
		if err := waitForDir(p.dir, time.Second); err != nil {
			return nil, err
		}
	}

	if err := writeSysfs(filepath.Join(p.dir, "period"), int(p.periodNs)); err != nil {
		return nil, fmt.Errorf("set period: %w", err)
	}
	if err := writeSysfs(filepath.Join(p.dir, "duty_cycle"), 0); err != nil {
		return nil, fmt.Errorf("clear duty: %w", err)
	}
	if err := writeSysfs(filepath.Join(p.dir, "enable"), 1); err != nil {
		return nil, fmt.Errorf("enable: %w", err)
	}
	return p, nil
}

// setDuty scales duty/maxDuty onto the period and writes it.
func (p *sysfsPWM) setDuty(duty, maxDuty uint32) error {
	ns := uint64(p.periodNs) * uint64(duty) / uint64(maxDuty)
	if err := writeSysfs(filepath.Join(p.dir, "duty_cycle"), int(ns)); err != nil {
		return fmt.Errorf("set duty: %w", err)
	}
	return nil
}

// close stops the channel. The channel stays exported; re-exporting on the
// next start is harmless.
func (p *sysfsPWM) close() error {
	if err := writeSysfs(filepath.Join(p.dir, "duty_cycle"), 0); err != nil {
		return err
	}
	return writeSysfs(filepath.Join(p.dir, "enable"), 0)
}

func writeSysfs(path string, v int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(v)), 0644)
}

func waitForDir(dir string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if _, err := os.Stat(dir); err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("pwm channel %s did not appear", dir)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
