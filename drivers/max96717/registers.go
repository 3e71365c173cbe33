package max96717

import "gmsl-go/drivers/gmsl"

const (
	// 7-bit I2C address (DEV_ADDR reset value 0x80 >> 1).
	AddressDefault = 0x40

	// DEV_ID values of the family.
	IDMAX96717  = 0xBF
	IDMAX96717F = 0xC8
	IDMAX96717R = 0xD4
)

// Register addresses, limited to those used by the diagnostics and the
// CSI/pipe bring-up. Addresses, masks and bit positions follow the silicon
// register map; do not renumber.
const (
	regReg0  = 0x0000 // DEV_ADDR [7:1]
	regReg2  = 0x0002 // VID_TX_EN_Z [6]
	regReg5  = 0x0005 // PU_LF0 [0], PU_LF1 [1]
	regReg13 = 0x000D // DEV_ID
	regReg14 = 0x000E // DEV_REV [3:0]
	regCtrl3 = 0x0013 // LOCKED [3], ERROR [2], CMU_LOCKED [1]
	regIntr3 = 0x001B // DEC_ERR_FLAG_A [0], IDLE_ERR_FLAG [2], LFLT_INT [3], REM_ERR_FLAG [5]
	regIntr5 = 0x001D // EOM_ERR_FLAG_A [0], RT_CNT_FLAG [2], MAX_RT_FLAG [3]
	regCnt0  = 0x0022 // DEC_ERR_A
	regCnt2  = 0x0024 // IDLE_ERR
	regLF    = 0x0026 // LF_0 [1:0], LF_1 [5:4]
	regTx3   = 0x0053 // TX_STR_SEL [1:0]

	// ARQ2 per control channel: RT_CNT [6:0], MAX_RT_ERR [7].
	regARQ2SPI  = 0x0087
	regARQ2GPIO = 0x0097
	regARQ2IICX = 0x00A7
	regARQ2IICY = 0x00AF

	regVideoTx2 = 0x0112 // PCLKDET [7], DRIFT_ERR [6], OVERFLOW [5]

	regFrontTop0  = 0x0308 // CLK_SELZ [2], START_PORTB [5]
	regFrontTop3  = 0x030B // VC_SELZ_L
	regFrontTop4  = 0x030C // VC_SELZ_H
	regFrontTop9  = 0x0311 // START_PORTBZ [6]
	regFrontTop10 = 0x0312 // BPP8DBLZ [2]
	regFrontTop11 = 0x0313 // BPP10DBLZ [2]
	regFrontTop12 = 0x0314 // MEM_DT1_SELZ [5:0], EN [6]
	regFrontTop13 = 0x0315 // MEM_DT2_SELZ [5:0], EN [6]
	regFrontTop22 = 0x031E // SOFT_BPPZ [4:0], SOFT_BPPZ_EN [5]
	regFrontTop23 = 0x031F // BPP12DBLZ [4]

	regMIPIRx0  = 0x0330 // PHY_CONFIG [2:0]
	regMIPIRx1  = 0x0331 // CTRL1_NUM_LANES [5:4]
	regMIPIRx2  = 0x0332 // PHY1_LANE_MAP [7:4]
	regMIPIRx3  = 0x0333 // PHY2_LANE_MAP [3:0]
	regMIPIRx4  = 0x0334 // PHY1_POL_MAP [6:4]
	regMIPIRx5  = 0x0335 // PHY2_POL_MAP [2:0]
	regMIPIRx12 = 0x033C // PHY1_LP_ERR [4:0]
	regMIPIRx13 = 0x033D // PHY1_HS_ERR
	regMIPIRx14 = 0x033E // PHY2_LP_ERR [4:0]
	regMIPIRx15 = 0x033F // PHY2_HS_ERR
	regMIPIRx19 = 0x0343 // CTRL1_CSI_ERR_L
	regMIPIRx20 = 0x0344 // CTRL1_CSI_ERR_H [2:0]

	regMIPIRxExt11 = 0x0383 // TUN_MODE [7]
	regExtPHY1Pkt  = 0x038D // PHY1_PKT_CNT
	regExtCSI1Pkt  = 0x038E // CSI1_PKT_CNT
	regExtTunPkt   = 0x038F // TUN_PKT_CNT
	regExtPHYClk   = 0x0390 // PHY_CLK_CNT

	regExtMemDT3 = 0x03C8 // MEM_DT3_SELZ [5:0], EN [6]
	regExtMemDT4 = 0x03C9
	regExtMemDT5 = 0x03CA
	regExtMemDT6 = 0x03CB
	regExtMemDT7 = 0x03D0
	regExtMemDT8 = 0x03D1

	regRLMSEOM = 0x1437 // EOM_A [6:0]

	regFSIntr1 = 0x1D13 // MEM_ECC_ERR2_INT [5]
	regMemECC1 = 0x1D15 // MEM_ECC_ERR2_CNT
)

// Fields.
var (
	fieldVidTxEnZ = gmsl.Field{Addr: regReg2, Mask: 0x40}
	fieldPULF     = gmsl.Field{Addr: regReg5, Mask: 0x03} // one enable bit per monitor
	fieldDevID    = gmsl.Field{Addr: regReg13, Mask: 0xFF}
	fieldDevRev   = gmsl.Field{Addr: regReg14, Mask: 0x0F}
	fieldLocked   = gmsl.Field{Addr: regCtrl3, Mask: 0x08}

	fieldDecErrFlagA = gmsl.Field{Addr: regIntr3, Mask: 0x01}
	fieldIdleErrFlag = gmsl.Field{Addr: regIntr3, Mask: 0x04}
	fieldLFltInt     = gmsl.Field{Addr: regIntr3, Mask: 0x08}
	fieldRemErrFlag  = gmsl.Field{Addr: regIntr3, Mask: 0x20}

	fieldEOMErrFlagA = gmsl.Field{Addr: regIntr5, Mask: 0x01}
	fieldMaxRTFlag   = gmsl.Field{Addr: regIntr5, Mask: 0x08}

	fieldDecErrA = gmsl.Field{Addr: regCnt0, Mask: 0xFF}
	fieldIdleErr = gmsl.Field{Addr: regCnt2, Mask: 0xFF}

	fieldLF0 = gmsl.Field{Addr: regLF, Mask: 0x03}
	fieldLF1 = gmsl.Field{Addr: regLF, Mask: 0x30}

	fieldTxStrSel = gmsl.Field{Addr: regTx3, Mask: 0x03}

	fieldPClkDet  = gmsl.Field{Addr: regVideoTx2, Mask: 0x80}
	fieldDriftErr = gmsl.Field{Addr: regVideoTx2, Mask: 0x40}
	fieldOverflow = gmsl.Field{Addr: regVideoTx2, Mask: 0x20}

	fieldClkSelZ     = gmsl.Field{Addr: regFrontTop0, Mask: 0x04}
	fieldStartPortB  = gmsl.Field{Addr: regFrontTop0, Mask: 0x20}
	fieldVCSelL      = gmsl.Field{Addr: regFrontTop3, Mask: 0xFF}
	fieldVCSelH      = gmsl.Field{Addr: regFrontTop4, Mask: 0xFF}
	fieldStartPortBZ = gmsl.Field{Addr: regFrontTop9, Mask: 0x40}
	fieldBPP8Dbl     = gmsl.Field{Addr: regFrontTop10, Mask: 0x04}
	fieldBPP10Dbl    = gmsl.Field{Addr: regFrontTop11, Mask: 0x04}
	fieldBPP12Dbl    = gmsl.Field{Addr: regFrontTop23, Mask: 0x10}
	fieldSoftBPP     = gmsl.Field{Addr: regFrontTop22, Mask: 0x1F}
	fieldSoftBPPEn   = gmsl.Field{Addr: regFrontTop22, Mask: 0x20}

	fieldPHYConfig = gmsl.Field{Addr: regMIPIRx0, Mask: 0x07}
	fieldNumLanes  = gmsl.Field{Addr: regMIPIRx1, Mask: 0x30}
	fieldPHY1Map   = gmsl.Field{Addr: regMIPIRx2, Mask: 0xF0}
	fieldPHY2Map   = gmsl.Field{Addr: regMIPIRx3, Mask: 0x0F}
	fieldPHY1Pol   = gmsl.Field{Addr: regMIPIRx4, Mask: 0x70}
	fieldPHY2Pol   = gmsl.Field{Addr: regMIPIRx5, Mask: 0x07}
	fieldPHY1LPErr = gmsl.Field{Addr: regMIPIRx12, Mask: 0x1F}
	fieldPHY1HSErr = gmsl.Field{Addr: regMIPIRx13, Mask: 0xFF}
	fieldPHY2LPErr = gmsl.Field{Addr: regMIPIRx14, Mask: 0x1F}
	fieldPHY2HSErr = gmsl.Field{Addr: regMIPIRx15, Mask: 0xFF}
	fieldCSIErrL   = gmsl.Field{Addr: regMIPIRx19, Mask: 0xFF}
	fieldCSIErrH   = gmsl.Field{Addr: regMIPIRx20, Mask: 0x07}

	fieldTunMode    = gmsl.Field{Addr: regMIPIRxExt11, Mask: 0x80}
	fieldPHY1PktCnt = gmsl.Field{Addr: regExtPHY1Pkt, Mask: 0xFF}
	fieldCSI1PktCnt = gmsl.Field{Addr: regExtCSI1Pkt, Mask: 0xFF}
	fieldTunPktCnt  = gmsl.Field{Addr: regExtTunPkt, Mask: 0xFF}
	fieldPHYClkCnt  = gmsl.Field{Addr: regExtPHYClk, Mask: 0xFF}

	fieldEOMA = gmsl.Field{Addr: regRLMSEOM, Mask: 0x7F}

	fieldMemECCErr2Int = gmsl.Field{Addr: regFSIntr1, Mask: 0x20}
	fieldMemECCErr2Cnt = gmsl.Field{Addr: regMemECC1, Mask: 0xFF}
)

// ARQ2 layout shared by every retransmission channel.
const (
	arqRTCntMask  = 0x7F
	arqMaxErrMask = 0x80
)

// Data-type selector layout shared by every MEM_DTn_SELZ register.
const (
	memDTMask   = 0x3F
	memDTEnMask = 0x40
)

// memDTRegs maps a video stream to its data-type selector register. The
// layout has no fixed stride. Streams without an entry are rejected.
// Streams 3..8 use the extension-block selectors from the datasheet map.
var memDTRegs = map[uint8]uint16{
	1: regFrontTop12,
	2: regFrontTop13,
	3: regExtMemDT3,
	4: regExtMemDT4,
	5: regExtMemDT5,
	6: regExtMemDT6,
	7: regExtMemDT7,
	8: regExtMemDT8,
}

// arqRegs lists the ARQ2 register of each retransmission channel.
var arqRegs = [gmsl.NumARQChannels]uint16{
	gmsl.ARQSPI:          regARQ2SPI,
	gmsl.ARQGPIO:         regARQ2GPIO,
	gmsl.ARQPassThrough1: regARQ2IICX,
	gmsl.ARQPassThrough2: regARQ2IICY,
}

// PHY config code for one port with four lanes.
const phyConfig1x4 = 0x0
