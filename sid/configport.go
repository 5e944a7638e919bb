package sid

// Version reported through the configuration port.
const (
	VersionMajor = 0
	VersionMinor = 1
	VersionPatch = 0
)

// Bits of the configuration byte.
const (
	ConfigMOS8580   = 0x01
	ConfigFilter    = 0x02
	ConfigExtFilter = 0x04
	ConfigDigiBoost = 0x08
)

// Commands accepted once the port is unlocked.
const (
	cmdCheck       = 0x00
	cmdConfigWrite = 0x01
	cmdConfigRead  = 0x02
	cmdLEDOn       = 0x03
	cmdLEDOff      = 0x04
	cmdVersionMaj  = 0xfd
	cmdVersionMin  = 0xfe
	cmdVersionPat  = 0xff
)

const unlockKey = "THEPICOSID"

// configPort lets the host reconfigure the emulator through writes to
// the unused register 0x1d. The host writes the unlock key one byte at
// a time, then a command and, for commands that take one, an argument.
// Answers are placed in the register shadow where the host reads them
// back.
type configPort struct {
	window  [len(unlockKey)]byte
	ready   bool
	command bool
	last    byte

	onConfig func(cfg byte)
	onLED    func(on bool)
}

func (p *configPort) reset() {
	p.window = [len(unlockKey)]byte{}
	p.ready = false
	p.command = false
	p.last = 0
}

func (p *configPort) write(c *Chip, addr, v byte) {
	switch addr {
	case RegConfig:
	case RegConfig + 1, RegConfig + 2:
		p.ready = false
		return
	default:
		return
	}

	if !p.ready {
		copy(p.window[:], p.window[1:])
		p.window[len(p.window)-1] = v
		if string(p.window[:]) == unlockKey {
			p.ready = true
		}
		return
	}

	if p.command {
		switch p.last {
		case cmdCheck:
			c.regs[RegConfig] = v ^ 0x88
		case cmdConfigWrite:
			c.ApplyConfig(v)
			if p.onConfig != nil {
				p.onConfig(v)
			}
		}
		p.command = false
		p.ready = false
		return
	}

	switch v {
	case cmdCheck, cmdConfigWrite:
		p.last = v
		p.command = true
	case cmdConfigRead:
		c.regs[RegConfig] = c.Config()
	case cmdLEDOn, cmdLEDOff:
		if p.onLED != nil {
			p.onLED(v == cmdLEDOn)
		}
		p.ready = false
	case cmdVersionMaj:
		c.regs[RegConfig] = VersionMajor
		p.ready = false
	case cmdVersionMin:
		c.regs[RegConfig] = VersionMinor
		p.ready = false
	case cmdVersionPat:
		c.regs[RegConfig] = VersionPatch
		p.ready = false
	default:
		p.ready = false
	}
}

// EnableConfigPort turns the in-band configuration protocol on register
// 0x1d on or off.
func (c *Chip) EnableConfigPort(on bool) {
	if !on {
		c.port = nil
		return
	}
	if c.port == nil {
		c.port = &configPort{}
	}
}

// OnConfig registers fn to be called after the host writes a new
// configuration byte through the port. The callback owns persistence.
func (c *Chip) OnConfig(fn func(cfg byte)) {
	c.EnableConfigPort(true)
	c.port.onConfig = fn
}

// OnLED registers fn to be called for the LED commands.
func (c *Chip) OnLED(fn func(on bool)) {
	c.EnableConfigPort(true)
	c.port.onLED = fn
}

// Config returns the current configuration as a configuration byte.
func (c *Chip) Config() byte {
	var cfg byte
	if c.m.chipType == MOS8580 {
		cfg |= ConfigMOS8580
	}
	if c.filter.enabled {
		cfg |= ConfigFilter
	}
	if c.ext.enabled {
		cfg |= ConfigExtFilter
	}
	if c.digiBoost {
		cfg |= ConfigDigiBoost
	}
	return cfg
}

// ApplyConfig sets chip type and switches from a configuration byte.
func (c *Chip) ApplyConfig(cfg byte) {
	if cfg&ConfigMOS8580 != 0 {
		c.SetChipType(MOS8580)
	} else {
		c.SetChipType(MOS6581)
	}
	c.EnableFilter(cfg&ConfigFilter != 0)
	c.EnableExtFilter(cfg&ConfigExtFilter != 0)
	c.EnableDigiBoost(cfg&ConfigDigiBoost != 0)
}
