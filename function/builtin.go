package function

// crc32Func computes CRC-32 over slice, defaulting to the standard
// reflected CRC-32 used by zip/png/ethernet.
func crc32Func(slice []byte, _ any, params map[string]any) (int64, error) {
	poly, ok := uintParam(params, "polynomial", 0x104C11DB7)
	if !ok {
		return 0, badParam("crc32", "polynomial")
	}
	init, ok := uintParam(params, "initial_value", 0xFFFFFFFF)
	if !ok {
		return 0, badParam("crc32", "initial_value")
	}
	reverse, ok := boolParam(params, "reverse", true)
	if !ok {
		return 0, badParam("crc32", "reverse")
	}
	xorOut, ok := uintParam(params, "xor_out", 0xFFFFFFFF)
	if !ok {
		return 0, badParam("crc32", "xor_out")
	}

	crc := crcCompute(slice, 32, poly, init, reverse, xorOut)
	return int64(uint32(crc)), nil
}

// crc16Func computes CRC-16, defaulting to CRC-16/MODBUS.
func crc16Func(slice []byte, _ any, params map[string]any) (int64, error) {
	poly, ok := uintParam(params, "polynomial", 0x18005)
	if !ok {
		return 0, badParam("crc16", "polynomial")
	}
	init, ok := uintParam(params, "initial_value", 0xFFFF)
	if !ok {
		return 0, badParam("crc16", "initial_value")
	}
	reverse, ok := boolParam(params, "reverse", true)
	if !ok {
		return 0, badParam("crc16", "reverse")
	}
	xorOut, ok := uintParam(params, "xor_out", 0)
	if !ok {
		return 0, badParam("crc16", "xor_out")
	}

	crc := crcCompute(slice, 16, poly, init, reverse, xorOut)
	return int64(uint16(crc)), nil
}

// lengthFunc implements (len(slice) * multiplier) + offset.
func lengthFunc(slice []byte, _ any, params map[string]any) (int64, error) {
	mul, ok := intParam(params, "multiplier", 1)
	if !ok {
		return 0, badParam("length", "multiplier")
	}
	off, ok := intParam(params, "offset", 0)
	if !ok {
		return 0, badParam("length", "offset")
	}
	return int64(len(slice))*mul + off, nil
}

// fileSizeFunc implements len(slice) + size_of_this_field.
// _field_size is injected by the codec's phase-2 patcher under this
// internal key immediately before invoking the function; schema authors
// never set it themselves.
func fileSizeFunc(slice []byte, _ any, params map[string]any) (int64, error) {
	ownSize, ok := intParam(params, "_field_size", 0)
	if !ok {
		return 0, badParam("file_size", "_field_size")
	}
	return int64(len(slice)) + ownSize, nil
}

// countFunc implements len(document[params.key]), 0 if the
// key is absent or not a list.
func countFunc(_ []byte, doc any, params map[string]any) (int64, error) {
	key, ok := stringParam(params, "key")
	if !ok {
		return 0, badParam("count", "key")
	}
	m, ok := doc.(map[string]any)
	if !ok {
		return 0, nil
	}
	v, exists := m[key]
	if !exists {
		return 0, nil
	}
	list, ok := v.([]any)
	if !ok {
		return 0, nil
	}
	return int64(len(list)), nil
}

func badParam(fn, param string) *Error {
	return &Error{Kind: BadParams, Name: fn, Msg: "bad or missing parameter " + param}
}
