package cil

var codeNames = map[Code]string{
	Nop: "nop", Break: "break", Ldarg0: "ldarg.0", Ldarg1: "ldarg.1", Ldarg2: "ldarg.2", Ldarg3: "ldarg.3",
	Ldloc0: "ldloc.0", Ldloc1: "ldloc.1", Ldloc2: "ldloc.2", Ldloc3: "ldloc.3",
	Stloc0: "stloc.0", Stloc1: "stloc.1", Stloc2: "stloc.2", Stloc3: "stloc.3",
	LdargS: "ldarg.s", LdargaS: "ldarga.s", StargS: "starg.s",
	LdlocS: "ldloc.s", LdlocaS: "ldloca.s", StlocS: "stloc.s",
	LdnullCode: "ldnull", LdcI4M1: "ldc.i4.m1",
	LdcI40: "ldc.i4.0", LdcI41: "ldc.i4.1", LdcI42: "ldc.i4.2", LdcI43: "ldc.i4.3", LdcI44: "ldc.i4.4",
	LdcI45: "ldc.i4.5", LdcI46: "ldc.i4.6", LdcI47: "ldc.i4.7", LdcI48: "ldc.i4.8",
	LdcI4S: "ldc.i4.s", LdcI4: "ldc.i4", LdcI8: "ldc.i8", LdcR4: "ldc.r4", LdcR8: "ldc.r8",
	Dup: "dup", Pop: "pop", Jmp: "jmp", Call: "call", Calli: "calli", Ret: "ret",
	BrS: "br.s", BrfalseS: "brfalse.s", BrtrueS: "brtrue.s",
	BeqS: "beq.s", BgeS: "bge.s", BgtS: "bgt.s", BleS: "ble.s", BltS: "blt.s",
	BneUnS: "bne.un.s", BgeUnS: "bge.un.s", BgtUnS: "bgt.un.s", BleUnS: "ble.un.s", BltUnS: "blt.un.s",
	Br: "br", Brfalse: "brfalse", Brtrue: "brtrue",
	Beq: "beq", Bge: "bge", Bgt: "bgt", Ble: "ble", Blt: "blt",
	BneUn: "bne.un", BgeUn: "bge.un", BgtUn: "bgt.un", BleUn: "ble.un", BltUn: "blt.un",
	Switch: "switch",
	LdindI1: "ldind.i1", LdindU1: "ldind.u1", LdindI2: "ldind.i2", LdindU2: "ldind.u2",
	LdindI4: "ldind.i4", LdindU4: "ldind.u4", LdindI8: "ldind.i8", LdindI: "ldind.i",
	LdindR4: "ldind.r4", LdindR8: "ldind.r8", LdindRef: "ldind.ref",
	StindRef: "stind.ref", StindI1: "stind.i1", StindI2: "stind.i2", StindI4: "stind.i4",
	StindI8: "stind.i8", StindR4: "stind.r4", StindR8: "stind.r8",
	Add: "add", Sub: "sub", Mul: "mul", Div: "div", DivUn: "div.un", Rem: "rem", RemUn: "rem.un",
	And: "and", Or: "or", Xor: "xor", Shl: "shl", Shr: "shr", ShrUn: "shr.un", Neg: "neg", Not: "not",
	ConvI1: "conv.i1", ConvI2: "conv.i2", ConvI4: "conv.i4", ConvI8: "conv.i8",
	ConvR4: "conv.r4", ConvR8: "conv.r8", ConvU4: "conv.u4", ConvU8: "conv.u8",
	Callvirt: "callvirt", Cpobj: "cpobj", Ldobj: "ldobj", Ldstr: "ldstr", Newobj: "newobj",
	Castclass: "castclass", Isinst: "isinst", ConvRUn: "conv.r.un", Unbox: "unbox", Throw: "throw",
	Ldfld: "ldfld", Ldflda: "ldflda", Stfld: "stfld", Ldsfld: "ldsfld", Ldsflda: "ldsflda", Stsfld: "stsfld",
	Stobj: "stobj",
	ConvOvfI1Un: "conv.ovf.i1.un", ConvOvfI2Un: "conv.ovf.i2.un", ConvOvfI4Un: "conv.ovf.i4.un",
	ConvOvfI8Un: "conv.ovf.i8.un", ConvOvfU1Un: "conv.ovf.u1.un", ConvOvfU2Un: "conv.ovf.u2.un",
	ConvOvfU4Un: "conv.ovf.u4.un", ConvOvfU8Un: "conv.ovf.u8.un", ConvOvfIUn: "conv.ovf.i.un", ConvOvfUUn: "conv.ovf.u.un",
	Box: "box", Newarr: "newarr", Ldlen: "ldlen", Ldelema: "ldelema",
	LdelemI1: "ldelem.i1", LdelemU1: "ldelem.u1", LdelemI2: "ldelem.i2", LdelemU2: "ldelem.u2",
	LdelemI4: "ldelem.i4", LdelemU4: "ldelem.u4", LdelemI8: "ldelem.i8", LdelemI: "ldelem.i",
	LdelemR4: "ldelem.r4", LdelemR8: "ldelem.r8", LdelemRef: "ldelem.ref",
	StelemI: "stelem.i", StelemI1: "stelem.i1", StelemI2: "stelem.i2", StelemI4: "stelem.i4",
	StelemI8: "stelem.i8", StelemR4: "stelem.r4", StelemR8: "stelem.r8", StelemRef: "stelem.ref",
	Ldelem: "ldelem", Stelem: "stelem", UnboxAny: "unbox.any",
	ConvOvfI1: "conv.ovf.i1", ConvOvfU1: "conv.ovf.u1", ConvOvfI2: "conv.ovf.i2", ConvOvfU2: "conv.ovf.u2",
	ConvOvfI4: "conv.ovf.i4", ConvOvfU4: "conv.ovf.u4", ConvOvfI8: "conv.ovf.i8", ConvOvfU8: "conv.ovf.u8",
	Refanyval: "refanyval", Ckfinite: "ckfinite", Mkrefany: "mkrefany", Ldtoken: "ldtoken",
	ConvU2: "conv.u2", ConvU1: "conv.u1", ConvI: "conv.i", ConvOvfI: "conv.ovf.i", ConvOvfU: "conv.ovf.u",
	AddOvf: "add.ovf", AddOvfUn: "add.ovf.un", MulOvf: "mul.ovf", MulOvfUn: "mul.ovf.un",
	SubOvf: "sub.ovf", SubOvfUn: "sub.ovf.un", Endfinally: "endfinally",
	Leave: "leave", LeaveS: "leave.s", StindI: "stind.i", ConvU: "conv.u",

	Arglist: "arglist", Ceq: "ceq", Cgt: "cgt", CgtUn: "cgt.un", Clt: "clt", CltUn: "clt.un",
	Ldftn: "ldftn", Ldvirtftn: "ldvirtftn",
	LdargCompound: "ldarg", LdargaCompound: "ldarga", StargCompound: "starg",
	LdlocCompound: "ldloc", LdlocaCompound: "ldloca", StlocCompound: "stloc",
	Localloc: "localloc", Endfilter: "endfilter", Unaligned: "unaligned", VolatileCode: "volatile.",
	Tail: "tail.", Initobj: "initobj", Constrained: "constrained.", Cpblk: "cpblk", Initblk: "initblk",
	NoChk: "no.", Rethrow: "rethrow", Sizeof: "sizeof", Refanytype: "refanytype", Readonly: "readonly.",
}
