package goforth

import (
	"bytes"
	"errors"
	"io"
	"os"
)

// maxFiles bounds the number of simultaneously open files; fids run from 1.
const maxFiles = 8

type openFile struct {
	File
	name string
}

type fileTable [maxFiles]*openFile

func (ft *fileTable) get(fid uint32) *openFile {
	if fid == 0 || fid > maxFiles {
		return nil
	}
	return ft[fid-1]
}

func (ft *fileTable) add(f File, name string) (uint32, bool) {
	for i, of := range ft {
		if of == nil {
			ft[i] = &openFile{f, name}
			return uint32(i + 1), true
		}
	}
	return 0, false
}

func (ft *fileTable) release(fid uint32) error {
	of := ft.get(fid)
	if of == nil {
		return os.ErrInvalid
	}
	ft[fid-1] = nil
	return of.Close()
}

func (ft *fileTable) Close() (err error) {
	for i := range ft {
		if ft[i] != nil {
			if cerr := ft.release(uint32(i + 1)); err == nil {
				err = cerr
			}
		}
	}
	return err
}

// OSFileSystem opens host files with the os package.
type OSFileSystem struct{}

// OpenFile maps a Forth access method onto open flags; create always
// truncates.
func (OSFileSystem) OpenFile(name string, fam FileAccess, create bool) (File, error) {
	var flag int
	switch fam &^ FileBinary {
	case FileRead:
		flag = os.O_RDONLY
	case FileWrite:
		flag = os.O_WRONLY
	case FileRead | FileWrite:
		flag = os.O_RDWR
	default:
		return nil, os.ErrInvalid
	}
	if create {
		flag |= os.O_CREATE | os.O_TRUNC
	}
	return os.OpenFile(name, flag, 0666)
}

// Remove deletes the named file.
func (OSFileSystem) Remove(name string) error { return os.Remove(name) }

type syncer interface{ Sync() error }

func init() {
	opTable[opCreateFile] = func(vm *VM) { vm.openFile(true) }
	opTable[opOpenFile] = func(vm *VM) { vm.openFile(false) }
	opTable[opCloseFile] = func(vm *VM) {
		vm.push(fileIOR(vm.files.release(vm.pop())))
	}
	opTable[opFlushFile] = (*VM).flushFile
	opTable[opDeleteFile] = (*VM).deleteFile
	opTable[opRepositionFile] = (*VM).repositionFile
	opTable[opFilePosition] = (*VM).filePosition
	opTable[opFileSize] = (*VM).fileSize
	opTable[opReadFile] = (*VM).readFile
	opTable[opReadLine] = (*VM).readLineOp
	opTable[opWriteFile] = func(vm *VM) { vm.writeFile(false) }
	opTable[opWriteLine] = func(vm *VM) { vm.writeFile(true) }
}

func fileIOR(err error) uint32 {
	if err != nil {
		return ThrowFileIO.ior()
	}
	return 0
}

func (vm *VM) fileSystem() FileSystem {
	throwIf(vm.fs == nil, ThrowUnsupported)
	return vm.fs
}

// ( c-addr u fam -- fid ior )
func (vm *VM) openFile(create bool) {
	fam := FileAccess(vm.pop())
	n := vm.pop()
	name := vm.mem.cstring(vm.pop(), n)
	f, err := vm.fileSystem().OpenFile(name, fam, create)
	if err == nil {
		fid, ok := vm.files.add(f, name)
		if ok {
			vm.logf("file", "open %q fid:%v", name, fid)
			vm.push(fid)
			vm.push(0)
			return
		}
		f.Close()
	}
	vm.logf("file", "open %q failed: %v", name, err)
	vm.push(0)
	vm.push(ThrowFileIO.ior())
}

// ( c-addr u -- ior )
func (vm *VM) deleteFile() {
	n := vm.pop()
	name := vm.mem.cstring(vm.pop(), n)
	vm.push(fileIOR(vm.fileSystem().Remove(name)))
}

// ( fid -- ior )
func (vm *VM) flushFile() {
	of := vm.files.get(vm.pop())
	switch {
	case of == nil:
		vm.push(ThrowFileIO.ior())
	default:
		var err error
		if s, ok := of.File.(syncer); ok {
			err = s.Sync()
		}
		vm.push(fileIOR(err))
	}
}

// ( ud fid -- ior )
func (vm *VM) repositionFile() {
	of := vm.files.get(vm.pop())
	pos := int64(vm.popDouble())
	if of == nil {
		vm.push(ThrowFileIO.ior())
		return
	}
	if _, err := of.Seek(pos, io.SeekStart); err != nil || pos < 0 {
		vm.push(ThrowFilePosition.ior())
		return
	}
	vm.push(0)
}

// ( fid -- ud ior )
func (vm *VM) filePosition() {
	of := vm.files.get(vm.pop())
	if of == nil {
		vm.pushDouble(0)
		vm.push(ThrowFileIO.ior())
		return
	}
	pos, err := of.Seek(0, io.SeekCurrent)
	vm.pushDouble(uint64(pos))
	vm.push(fileIOR(err))
}

// ( fid -- ud ior )
func (vm *VM) fileSize() {
	of := vm.files.get(vm.pop())
	if of == nil {
		vm.pushDouble(0)
		vm.push(ThrowFileIO.ior())
		return
	}
	size, err := fileSize(of)
	vm.pushDouble(uint64(size))
	vm.push(fileIOR(err))
}

// fileSize seeks to the end and back.
func fileSize(f io.Seeker) (int64, error) {
	pos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	end, err := f.Seek(0, io.SeekEnd)
	if _, serr := f.Seek(pos, io.SeekStart); err == nil {
		err = serr
	}
	return end, err
}

// ( c-addr u1 fid -- u2 ior )
func (vm *VM) readFile() {
	of := vm.files.get(vm.pop())
	n := vm.pop()
	addr := vm.pop()
	if of == nil {
		vm.push(0)
		vm.push(ThrowFileIO.ior())
		return
	}
	buf := make([]byte, n)
	m, err := io.ReadFull(of, buf)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = nil
	}
	vm.mem.stor(addr, buf[:m])
	vm.push(uint32(m))
	vm.push(fileIOR(err))
}

// ( c-addr u1 fid -- u2 flag ior )
func (vm *VM) readLineOp() {
	of := vm.files.get(vm.pop())
	n := vm.pop()
	addr := vm.pop()
	if of == nil {
		vm.push(0)
		vm.push(False)
		vm.push(ThrowFileIO.ior())
		return
	}
	line, eof, err := readLine(of, int(n))
	vm.mem.stor(addr, line)
	vm.push(uint32(len(line)))
	vm.pushFlag(!eof && err == nil)
	vm.push(fileIOR(err))
}

// readLine reads up to max bytes of the next line, leaving the file
// positioned just past its terminator; a line longer than max is returned in
// pieces. eof is only true when nothing at all could be read.
func readLine(f io.ReadSeeker, max int) (line []byte, eof bool, err error) {
	buf := make([]byte, max+1)
	n, err := io.ReadFull(f, buf)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		if n == 0 {
			return nil, true, nil
		}
		err = nil
	} else if err != nil {
		return nil, false, err
	}
	buf = buf[:n]

	if i := bytes.IndexByte(buf, '\n'); i >= 0 && i <= max {
		line = buf[:i]
		if rest := n - i - 1; rest > 0 {
			_, err = f.Seek(-int64(rest), io.SeekCurrent)
		}
	} else {
		if len(buf) > max {
			line = buf[:max]
			_, err = f.Seek(-1, io.SeekCurrent)
		} else {
			line = buf
		}
	}
	line = bytes.TrimSuffix(line, []byte{'\r'})
	return line, false, err
}

// ( c-addr u fid -- ior )
func (vm *VM) writeFile(newline bool) {
	of := vm.files.get(vm.pop())
	n := vm.pop()
	addr := vm.pop()
	if of == nil {
		vm.push(ThrowFileIO.ior())
		return
	}
	buf := vm.mem.load(addr, n)
	if newline {
		buf = append(buf, '\n')
	}
	_, err := of.Write(buf)
	vm.push(fileIOR(err))
}

// refillFile reads the next line of the current file input source into the
// file buffer, recording where it began for SAVE-INPUT.
func (vm *VM) refillFile() bool {
	of := vm.files.get(vm.sysvar(sysSourceID))
	if of == nil {
		return false
	}
	pos, err := of.Seek(0, io.SeekCurrent)
	if err != nil {
		return false
	}
	hi, lo := dsplit(uint64(pos))
	vm.setSysvar(sysFilePosLo, lo)
	vm.setSysvar(sysFilePosHi, hi)

	line, eof, err := readLine(of, fileBufSize-1)
	if eof || err != nil {
		return false
	}
	vm.mem.stor(vm.layout.fileBuf, line)
	vm.setSysvar(sysSourceAddr, vm.layout.fileBuf)
	vm.setSysvar(sysSourceLen, uint32(len(line)))
	vm.setSysvar(sysToIn, 0)
	return true
}

// sourceFileName returns the name of the file being interpreted, if any.
func (vm *VM) sourceFileName() string {
	id := vm.sysvar(sysSourceID)
	if id == 0 || id == True {
		return ""
	}
	if of := vm.files.get(id); of != nil {
		return of.name
	}
	return ""
}
