/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package atconfig

import (
	"fmt"

	"github.com/spf13/viper"
)

// Load reads Tunables from the named config file (if it exists) layered over
// the AT_ENGINE_-prefixed environment and the package defaults, then
// validates the result. path may be empty, in which case only environment
// overrides and defaults apply.
func Load(path string) (Tunables, error) {
	t := Default()

	v := viper.New()
	v.SetEnvPrefix("AT_ENGINE")
	v.AutomaticEnv()

	v.SetDefault("cmd_max", t.CmdMax)
	v.SetDefault("fifo_size", t.FifoSize)
	v.SetDefault("tick_interval", t.TickInterval)
	v.SetDefault("max_concurrent_cmd", t.MaxConcurrentCmd)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Tunables{}, fmt.Errorf("atconfig: reading %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&t); err != nil {
		return Tunables{}, fmt.Errorf("atconfig: unmarshal: %w", err)
	}

	if err := t.Validate(); err != nil {
		return Tunables{}, fmt.Errorf("atconfig: %w", err)
	}

	return t, nil
}
