package sensors

// MPU6050 register map (subset used here).
const (
	mpuRegSmplrtDiv  = 0x19
	mpuRegConfig     = 0x1A
	mpuRegAccelCfg   = 0x1C
	mpuRegAccelXoutH = 0x3B
	mpuRegPwrMgmt1   = 0x6B
	mpuRegWhoAmI     = 0x75

	mpuWhoAmIValue = 0x68

	// LSB per g at the default ±2g full-scale range.
	mpuAccelScale = 16384.0
)
