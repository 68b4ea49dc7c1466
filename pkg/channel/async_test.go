/*
Copyright 2026 The quartzfs Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package channel

import (
	"context"
	"testing"
)

func TestAsyncChannelWriteThenRead(t *testing.T) {
	file := newTestFile(t)
	ch := Open(file, Read|Write)
	a := NewAsyncChannel(ch, 2)
	defer a.Close()
	ctx := context.Background()

	var handlerResult Result
	handlerDone := make(chan struct{})
	fut := a.WriteAt(ctx, []byte("async"), 0, func(r Result) {
		handlerResult = r
		close(handlerDone)
	})
	res := fut.Get()
	if res.Err != nil || res.N != 5 {
		t.Fatalf("WriteAt result = %+v", res)
	}
	<-handlerDone
	if handlerResult.N != 5 {
		t.Errorf("handler result N = %d, want 5", handlerResult.N)
	}

	buf := make([]byte, 5)
	rfut := a.ReadAt(ctx, buf, 0, nil)
	rres := rfut.Get()
	if rres.Err != nil || string(buf[:rres.N]) != "async" {
		t.Fatalf("ReadAt result = %+v, buf = %q", rres, buf[:rres.N])
	}
}
