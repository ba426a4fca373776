package logger

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

var bufferpool = buffer.NewPool()

// bracketTimeEncoder formats time as [2006-01-02 15:04:05]
func bracketTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + t.Format("2006-01-02 15:04:05") + "]")
}

// bracketLevelEncoder formats level as [INFO]
func bracketLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + level.CapitalString() + "]")
}

// bracketColorLevelEncoder formats level as [INFO] wrapped in an ANSI color
func bracketColorLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	color := "\x1b[0m"
	switch level {
	case zapcore.DebugLevel:
		color = "\x1b[35m"
	case zapcore.InfoLevel:
		color = "\x1b[34m"
	case zapcore.WarnLevel:
		color = "\x1b[33m"
	case zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		color = "\x1b[31m"
	}
	enc.AppendString(color + "[" + level.CapitalString() + "]\x1b[0m")
}

// kvConsoleEncoder is a console encoder that prints fields as key=value
// instead of a trailing JSON object
type kvConsoleEncoder struct {
	zapcore.Encoder
	cfg zapcore.EncoderConfig
}

func newKVConsoleEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return &kvConsoleEncoder{
		Encoder: zapcore.NewConsoleEncoder(cfg),
		cfg:     cfg,
	}
}

// Clone creates a copy of the encoder
func (e *kvConsoleEncoder) Clone() zapcore.Encoder {
	return &kvConsoleEncoder{
		Encoder: e.Encoder.Clone(),
		cfg:     e.cfg,
	}
}

// EncodeEntry writes "time level caller msg k=v k=v"
func (e *kvConsoleEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	buf := bufferpool.Get()
	sep := e.cfg.ConsoleSeparator

	prefix := &stringsEncoder{}
	if e.cfg.TimeKey != "" && e.cfg.EncodeTime != nil {
		e.cfg.EncodeTime(entry.Time, prefix)
	}
	if e.cfg.LevelKey != "" && e.cfg.EncodeLevel != nil {
		e.cfg.EncodeLevel(entry.Level, prefix)
	}
	if e.cfg.CallerKey != "" && entry.Caller.Defined && e.cfg.EncodeCaller != nil {
		e.cfg.EncodeCaller(entry.Caller, prefix)
	}
	for _, s := range prefix.elems {
		buf.AppendString(s)
		buf.AppendString(sep)
	}

	if e.cfg.MessageKey != "" {
		buf.AppendString(entry.Message)
	}

	for _, field := range fields {
		buf.AppendString(sep)
		buf.AppendString(field.Key)
		buf.AppendByte('=')
		appendFieldValue(buf, field)
	}

	if entry.Stack != "" && e.cfg.StacktraceKey != "" {
		buf.AppendByte('\n')
		buf.AppendString(entry.Stack)
	}

	if e.cfg.LineEnding != "" {
		buf.AppendString(e.cfg.LineEnding)
	} else {
		buf.AppendString(zapcore.DefaultLineEnding)
	}
	return buf, nil
}

// stringsEncoder collects the output of zap's primitive encoders
type stringsEncoder struct {
	elems []string
}

func (s *stringsEncoder) add(v any)                       { s.elems = append(s.elems, fmt.Sprint(v)) }
func (s *stringsEncoder) AppendBool(v bool)               { s.add(v) }
func (s *stringsEncoder) AppendByteString(v []byte)       { s.elems = append(s.elems, string(v)) }
func (s *stringsEncoder) AppendComplex128(v complex128)   { s.add(v) }
func (s *stringsEncoder) AppendComplex64(v complex64)     { s.add(v) }
func (s *stringsEncoder) AppendFloat64(v float64)         { s.add(v) }
func (s *stringsEncoder) AppendFloat32(v float32)         { s.add(v) }
func (s *stringsEncoder) AppendInt(v int)                 { s.add(v) }
func (s *stringsEncoder) AppendInt64(v int64)             { s.add(v) }
func (s *stringsEncoder) AppendInt32(v int32)             { s.add(v) }
func (s *stringsEncoder) AppendInt16(v int16)             { s.add(v) }
func (s *stringsEncoder) AppendInt8(v int8)               { s.add(v) }
func (s *stringsEncoder) AppendString(v string)           { s.elems = append(s.elems, v) }
func (s *stringsEncoder) AppendUint(v uint)               { s.add(v) }
func (s *stringsEncoder) AppendUint64(v uint64)           { s.add(v) }
func (s *stringsEncoder) AppendUint32(v uint32)           { s.add(v) }
func (s *stringsEncoder) AppendUint16(v uint16)           { s.add(v) }
func (s *stringsEncoder) AppendUint8(v uint8)             { s.add(v) }
func (s *stringsEncoder) AppendUintptr(v uintptr)         { s.add(v) }
func (s *stringsEncoder) AppendDuration(v time.Duration)  { s.elems = append(s.elems, v.String()) }
func (s *stringsEncoder) AppendTime(v time.Time)          { s.elems = append(s.elems, v.String()) }
func (s *stringsEncoder) AppendReflected(v any) error     { s.add(v); return nil }
func (s *stringsEncoder) AppendObject(zapcore.ObjectMarshaler) error { return nil }
func (s *stringsEncoder) AppendArray(v zapcore.ArrayMarshaler) error {
	return v.MarshalLogArray(s)
}

// appendFieldValue writes the value half of a key=value pair
func appendFieldValue(buf *buffer.Buffer, field zapcore.Field) {
	switch field.Type {
	case zapcore.StringType:
		buf.AppendString(field.String)
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type:
		buf.AppendInt(field.Integer)
	case zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type:
		buf.AppendUint(uint64(field.Integer))
	case zapcore.Float64Type:
		buf.AppendFloat(math.Float64frombits(uint64(field.Integer)), 64)
	case zapcore.Float32Type:
		buf.AppendFloat(float64(math.Float32frombits(uint32(field.Integer))), 32)
	case zapcore.BoolType:
		buf.AppendBool(field.Integer == 1)
	case zapcore.DurationType:
		buf.AppendString(time.Duration(field.Integer).String())
	case zapcore.TimeType:
		ts := time.Unix(0, field.Integer)
		if loc, ok := field.Interface.(*time.Location); ok {
			ts = ts.In(loc)
		}
		buf.AppendString(ts.String())
	case zapcore.TimeFullType:
		if ts, ok := field.Interface.(time.Time); ok {
			buf.AppendString(ts.String())
		}
	case zapcore.ErrorType:
		if err, ok := field.Interface.(error); ok && err != nil {
			buf.AppendString(err.Error())
		} else {
			buf.AppendString("<nil>")
		}
	case zapcore.StringerType:
		if stringer, ok := field.Interface.(fmt.Stringer); ok {
			buf.AppendString(stringer.String())
		}
	default:
		if field.Interface != nil {
			buf.AppendString(fmt.Sprint(field.Interface))
		}
	}
}
